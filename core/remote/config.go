package remote

// Config holds configuration for the remote event catalog API.
type Config struct {
	// BaseURL is the API root, e.g. https://events.example.org/api/v1.
	BaseURL string `mapstructure:"base_url" default:"http://127.0.0.1:5000/api/v1"`
	// OrganizationID owns every entity created by the importer.
	OrganizationID string `mapstructure:"organization_id" default:"1"`
	// ClientID is the OAuth2 client id.
	ClientID string `mapstructure:"client_id" default:""`
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `mapstructure:"client_secret" default:""`
	// TokenURL is the OAuth2 token endpoint used for refreshing.
	TokenURL string `mapstructure:"token_url" default:""`
	// Scope is a space separated list of OAuth2 scopes.
	Scope string `mapstructure:"scope" default:"event:write organizer:write place:write"`
	// AccessToken seeds the token source when no token is persisted yet.
	AccessToken string `mapstructure:"access_token" default:""`
	// RefreshToken seeds the token source when no token is persisted yet.
	RefreshToken string `mapstructure:"refresh_token" default:""`
	// TimeoutSeconds bounds every HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
