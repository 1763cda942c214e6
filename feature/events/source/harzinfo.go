package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"event-sync/core/storage"

	"go.uber.org/zap"
)

// defaultRequest is the full-search body used when no template file is given.
const defaultRequest = `{
  "searchFilter": {
    "ndsdestinationdataevent": {
      "city": {},
      "startDate": "",
      "endDate": "",
      "searchWithoutDateBackupStart": "",
      "searchWithoutDateBackupEnd": ""
    }
  }
}`

// ModifiedField is the item field carrying its last modification time.
const ModifiedField = "lastModified"

var modifiedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Harzinfo enumerates the events of every configured city through the
// harzinfo full-search endpoint.
type Harzinfo struct {
	cfg      Config
	cities   []City
	template []byte
	http     *http.Client
	storage  storage.Client
	bucket   string
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Harzinfo source.
type Option func(*Harzinfo)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Harzinfo) { h.http = c }
}

// WithSnapshots stores raw search responses in bucket and reuses them.
func WithSnapshots(client storage.Client, bucket string) Option {
	return func(h *Harzinfo) {
		h.storage = client
		h.bucket = bucket
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harzinfo) { h.logger = l }
}

// WithClock overrides the clock used for the date window.
func WithClock(now func() time.Time) Option {
	return func(h *Harzinfo) { h.now = now }
}

// NewHarzinfo creates the source. The request template is read from
// cfg.RequestFile when set.
func NewHarzinfo(cfg Config, cities []City, opts ...Option) (*Harzinfo, error) {
	h := &Harzinfo{
		cfg:      cfg,
		cities:   cities,
		template: []byte(defaultRequest),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.http == nil {
		timeout := cfg.TimeoutSeconds
		if timeout <= 0 {
			timeout = 60
		}
		h.http = &http.Client{Timeout: time.Duration(timeout) * time.Second}
	}

	if cfg.RequestFile != "" {
		data, err := os.ReadFile(cfg.RequestFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read request template: %w", err)
		}
		h.template = data
	}
	if _, err := h.body(City{ID: 1, Title: "probe"}); err != nil {
		return nil, err
	}
	return h, nil
}

// BaseURL is the root event links are relative to.
func (h *Harzinfo) BaseURL() string {
	return strings.TrimRight(h.cfg.BaseURL, "/")
}

// Cities returns the configured cities.
func (h *Harzinfo) Cities() []City {
	return h.cities
}

// List returns the records of all cities. The search has no modification
// filter, so since is not used to narrow the query. A city that cannot be
// loaded fails the whole enumeration.
func (h *Harzinfo) List(ctx context.Context, since *time.Time) ([]Record, error) {
	var records []Record
	for _, city := range h.cities {
		items, err := h.cityItems(ctx, city)
		if err != nil {
			return nil, fmt.Errorf("failed to load events of %s: %w", city.Name(), err)
		}
		h.logger.Info("Loaded city events",
			zap.String("city", city.Name()),
			zap.Int("items", len(items)))

		for _, item := range items {
			records = append(records, Record{
				Fields:    item,
				Organizer: city.Name(),
				Modified:  parseModified(item[ModifiedField]),
			})
		}
	}
	return records, nil
}

type searchResponse struct {
	Result []map[string]any `json:"result"`
}

func (h *Harzinfo) cityItems(ctx context.Context, city City) ([]map[string]any, error) {
	data, err := h.load(ctx, city)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var resp searchResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return resp.Result, nil
}

func (h *Harzinfo) load(ctx context.Context, city City) ([]byte, error) {
	if h.storage == nil {
		return h.search(ctx, city)
	}

	name := fmt.Sprintf("%s/hi_%d.json", strings.Trim(h.cfg.SnapshotPrefix, "/"), city.ID)
	data, err := storage.ReadObject(ctx, h.storage, h.bucket, name)
	if err == nil {
		h.logger.Debug("Using snapshot", zap.String("object", name))
		return data, nil
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}

	data, err = h.search(ctx, city)
	if err != nil {
		return nil, err
	}
	if err := storage.PutJSON(ctx, h.storage, h.bucket, name, json.RawMessage(data)); err != nil {
		h.logger.Warn("Failed to store snapshot", zap.String("object", name), zap.Error(err))
	}
	return data, nil
}

func (h *Harzinfo) search(ctx context.Context, city City) ([]byte, error) {
	body, err := h.body(city)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL()+h.cfg.SearchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	return data, nil
}

// body fills the request template with the city filter and the date window.
func (h *Harzinfo) body(city City) ([]byte, error) {
	var tmpl map[string]any
	if err := json.Unmarshal(h.template, &tmpl); err != nil {
		return nil, fmt.Errorf("invalid request template: %w", err)
	}
	searchFilter, ok := tmpl["searchFilter"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid request template: missing searchFilter")
	}
	filter, ok := searchFilter["ndsdestinationdataevent"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid request template: missing searchFilter.ndsdestinationdataevent")
	}

	months := h.cfg.WindowMonths
	if months <= 0 {
		months = 12
	}
	today := h.now()
	start := today.Format("2006-01-02")
	end := today.AddDate(0, months, 0).Format("2006-01-02")

	filter["city"] = map[string]string{strconv.Itoa(city.ID): city.Name()}
	filter["startDate"] = start
	filter["endDate"] = end
	filter["searchWithoutDateBackupStart"] = start
	filter["searchWithoutDateBackupEnd"] = end

	return json.Marshal(tmpl)
}

func parseModified(v any) time.Time {
	switch val := v.(type) {
	case json.Number:
		if secs, err := val.Int64(); err == nil && secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range modifiedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
