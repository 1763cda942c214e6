package source

// Config holds configuration for the harzinfo source.
type Config struct {
	// BaseURL is the site root; event links are relative to it.
	BaseURL string `mapstructure:"base_url" default:"https://www.harzinfo.de"`
	// SearchPath is the full-search endpoint below BaseURL.
	SearchPath string `mapstructure:"search_path" default:"/?ndssearch=fullsearch&no_cache=1&L=0"`
	// CitiesFile is the YAML file listing the cities to enumerate.
	CitiesFile string `mapstructure:"cities_file" default:"data/cities.yaml"`
	// RequestFile is an optional JSON request template. Empty uses the built-in one.
	RequestFile string `mapstructure:"request_file" default:""`
	// WindowMonths is the length of the searched date window starting today.
	WindowMonths int `mapstructure:"window_months" default:"12"`
	// TimeoutSeconds bounds one search request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
	// Snapshots keeps the raw search response per city in object storage
	// and reads it back instead of querying the site again.
	Snapshots bool `mapstructure:"snapshots" default:"false"`
	// SnapshotPrefix is the object name prefix of snapshots.
	SnapshotPrefix string `mapstructure:"snapshot_prefix" default:"snapshots"`
}
