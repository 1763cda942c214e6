package models

import (
	"encoding/json"
	"strconv"
)

// Ref references a remote entity by id.
type Ref struct {
	ID string
}

// MarshalJSON writes numeric ids as JSON numbers and anything else as a string.
func (r Ref) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(r.ID, 10, 64); err == nil {
		return []byte(`{"id":` + r.ID + `}`), nil
	}
	return json.Marshal(struct {
		ID string `json:"id"`
	}{r.ID})
}
