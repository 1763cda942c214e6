package source

import (
	"sort"
	"strings"
	"time"

	"event-sync/core/utils"
)

// Record is one event item of the source. Fields holds the raw item with
// mixed JSON shapes; the accessors tolerate numbers encoded as strings.
type Record struct {
	Fields map[string]any
	// Organizer is the name of the enumeration unit the item belongs to.
	Organizer string
	// Modified is zero when the source reports no modification time.
	Modified time.Time
}

// Has reports whether key is present and not null.
func (r Record) Has(key string) bool {
	v, ok := r.Fields[key]
	return ok && v != nil
}

// String returns the field as trimmed text.
func (r Record) String(key string) string {
	return strings.TrimSpace(utils.ToString(r.Fields[key]))
}

// Int returns the field as an integer, 0 when absent or invalid.
func (r Record) Int(key string) int {
	return utils.ToInt(r.Fields[key])
}

// Float returns the field as a float.
func (r Record) Float(key string) (float64, bool) {
	return utils.ToFloat(r.Fields[key])
}

// Bool returns the field as a boolean.
func (r Record) Bool(key string) bool {
	return utils.ToBool(r.Fields[key])
}

// Labels returns the text values of a list or id-keyed object field.
// Object values are ordered by key so repeated scrapes yield the same order.
func (r Record) Labels(key string) []string {
	var labels []string
	add := func(v any) {
		if s := strings.TrimSpace(utils.ToString(v)); s != "" {
			labels = append(labels, s)
		}
	}

	switch v := r.Fields[key].(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(v[k])
		}
	case []any:
		for _, item := range v {
			add(item)
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	}
	return labels
}
