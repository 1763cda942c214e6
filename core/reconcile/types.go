package reconcile

import (
	"sort"
	"time"
)

// Kind identifies an entity kind managed by the reconciliation engine.
type Kind string

const (
	// KindEvent is a catalog event. Events reference a place and an organizer.
	KindEvent Kind = "event"
	// KindPlace is the venue of an event.
	KindPlace Kind = "place"
	// KindOrganizer is the organizer of an event.
	KindOrganizer Kind = "organizer"
)

// Kinds lists all kinds in dependency order (referenced kinds first).
var Kinds = []Kind{KindOrganizer, KindPlace, KindEvent}

// PurgeOrder lists kinds in reverse dependency order: a place or organizer
// must outlive any event that might still reference it during the same pass.
var PurgeOrder = []Kind{KindEvent, KindPlace, KindOrganizer}

// Outcome is the decision taken for one observed source entity.
type Outcome string

const (
	// OutcomeNew means the entity was created remotely.
	OutcomeNew Outcome = "new"
	// OutcomeUpdated means an existing remote entity was rewritten.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged means the stored hash matched and no remote call was made.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeDuplicate means the key was already observed in this run.
	OutcomeDuplicate Outcome = "duplicate"
)

// Payload is an outbound entity body. Strip returns a copy without the named
// field; ok is false when the payload has no such optional field set.
type Payload interface {
	Strip(field string) (p Payload, ok bool)
}

// Rejection describes a single field the remote refused to accept.
type Rejection struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// WriteResult is the typed result of a remote create or update:
// either accepted (RemoteID set on create) or rejected on one field.
type WriteResult struct {
	// RemoteID is the id assigned by the remote on create.
	RemoteID string
	// Rejected is set when the remote refused a field of the payload.
	Rejected *Rejection
}

// Accepted returns a successful WriteResult.
func Accepted(remoteID string) WriteResult {
	return WriteResult{RemoteID: remoteID}
}

// FieldRejected returns a WriteResult for a refused field.
func FieldRejected(field, detail string) WriteResult {
	return WriteResult{Rejected: &Rejection{Field: field, Detail: detail}}
}

// Counts aggregates outcomes for one kind.
type Counts struct {
	New        int `json:"new"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Deleted    int `json:"deleted"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
}

// Record increments the counter matching an outcome.
func (c *Counts) Record(o Outcome) {
	switch o {
	case OutcomeNew:
		c.New++
	case OutcomeUpdated:
		c.Updated++
	case OutcomeUnchanged:
		c.Unchanged++
	case OutcomeDuplicate:
		c.Duplicates++
	}
}

func (c *Counts) add(o Counts) {
	c.New += o.New
	c.Updated += o.Updated
	c.Unchanged += o.Unchanged
	c.Deleted += o.Deleted
	c.Failed += o.Failed
	c.Duplicates += o.Duplicates
}

// Summary is the user-visible result of one run.
type Summary struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Incremental bool             `json:"incremental"`
	Kinds       map[Kind]*Counts `json:"kinds"`
}

// NewSummary creates an empty summary with counters for every kind.
func NewSummary(runID string, startedAt time.Time) *Summary {
	s := &Summary{
		RunID:     runID,
		StartedAt: startedAt,
		Kinds:     make(map[Kind]*Counts, len(Kinds)),
	}
	for _, k := range Kinds {
		s.Kinds[k] = &Counts{}
	}
	return s
}

// For returns the counters of a kind, creating them if needed.
func (s *Summary) For(kind Kind) *Counts {
	c, ok := s.Kinds[kind]
	if !ok {
		c = &Counts{}
		s.Kinds[kind] = c
	}
	return c
}

// Total sums the counters of all kinds.
func (s *Summary) Total() Counts {
	var total Counts
	for _, c := range s.Kinds {
		total.add(*c)
	}
	return total
}

// ActionType represents the type of purge action.
type ActionType string

const (
	// ActionDeleteRemote deletes the remote entity, then drops its mapping and hash.
	ActionDeleteRemote ActionType = "delete_remote"
	// ActionDropMapping drops the mapping and hash only.
	ActionDropMapping ActionType = "drop_mapping"
)

// Action represents a planned purge operation for one retired key.
type Action struct {
	Type     ActionType `json:"type"`
	Kind     Kind       `json:"kind"`
	Key      string     `json:"key"`
	RemoteID string     `json:"remote_id"`
	Reason   string     `json:"reason"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
