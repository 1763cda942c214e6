package reconcile

import (
	"context"
	"fmt"
	"time"
)

// Store is the durable mapping store: per kind, source key to remote id and
// source key to content hash, plus the start time of the last finished run.
// Writes are atomic per key; no multi-key transaction is required.
type Store interface {
	Mappings(ctx context.Context, kind Kind) (map[string]string, error)
	Hashes(ctx context.Context, kind Kind) (map[string]string, error)
	SetMapping(ctx context.Context, kind Kind, key, remoteID string) error
	SetHash(ctx context.Context, kind Kind, key, hash string) error
	DeleteMapping(ctx context.Context, kind Kind, key string) error
	DeleteHash(ctx context.Context, kind Kind, key string) error
	LastRun(ctx context.Context) (*time.Time, error)
	SetLastRun(ctx context.Context, t time.Time) error
}

// State is the in-memory view of one run: the mappings and hashes loaded at
// start (kept current as the run writes) and the keys observed so far.
// The observed sets are discarded with the State at run end.
type State struct {
	mappings map[Kind]map[string]string
	owners   map[Kind]map[string]string
	hashes   map[Kind]map[string]string
	observed map[Kind]map[string]struct{}
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		mappings: make(map[Kind]map[string]string),
		owners:   make(map[Kind]map[string]string),
		hashes:   make(map[Kind]map[string]string),
		observed: make(map[Kind]map[string]struct{}),
	}
}

// LoadState reads all mappings and hashes of the given kinds from the store.
func LoadState(ctx context.Context, store Store, kinds ...Kind) (*State, error) {
	s := NewState()
	for _, kind := range kinds {
		m, err := store.Mappings(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s mappings: %w", kind, err)
		}
		h, err := store.Hashes(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s hashes: %w", kind, err)
		}
		if h == nil {
			h = map[string]string{}
		}
		s.hashes[kind] = h
		s.mappings[kind] = make(map[string]string, len(m))
		for key, id := range m {
			s.setMapping(kind, key, id)
		}
	}
	return s, nil
}

// Observe marks key as seen in this run. It returns false when the key had
// already been observed, i.e. the occurrence is a duplicate.
func (s *State) Observe(kind Kind, key string) bool {
	set, ok := s.observed[kind]
	if !ok {
		set = make(map[string]struct{})
		s.observed[kind] = set
	}
	if _, seen := set[key]; seen {
		return false
	}
	set[key] = struct{}{}
	return true
}

// IsObserved reports whether key was observed in this run.
func (s *State) IsObserved(kind Kind, key string) bool {
	_, ok := s.observed[kind][key]
	return ok
}

// RemoteID returns the mapped remote id of key.
func (s *State) RemoteID(kind Kind, key string) (string, bool) {
	id, ok := s.mappings[kind][key]
	return id, ok
}

// Owner returns the key mapped to remoteID, if any.
func (s *State) Owner(kind Kind, remoteID string) (string, bool) {
	key, ok := s.owners[kind][remoteID]
	return key, ok
}

// Hash returns the stored content hash of key.
func (s *State) Hash(kind Kind, key string) (string, bool) {
	h, ok := s.hashes[kind][key]
	return h, ok
}

// MappingCount returns the number of mapped keys of a kind.
func (s *State) MappingCount(kind Kind) int {
	return len(s.mappings[kind])
}

// Retired returns, sorted, every key of kind that has a mapping or a hash but
// was not observed in this run.
func (s *State) Retired(kind Kind) []string {
	candidates := make(map[string]struct{})
	for key := range s.mappings[kind] {
		candidates[key] = struct{}{}
	}
	for key := range s.hashes[kind] {
		candidates[key] = struct{}{}
	}
	for key := range s.observed[kind] {
		delete(candidates, key)
	}
	return sortedKeys(candidates)
}

func (s *State) setMapping(kind Kind, key, remoteID string) {
	if s.mappings[kind] == nil {
		s.mappings[kind] = make(map[string]string)
	}
	s.mappings[kind][key] = remoteID
	if s.owners[kind] == nil {
		s.owners[kind] = make(map[string]string)
	}
	s.owners[kind][remoteID] = key
}

func (s *State) setHash(kind Kind, key, hash string) {
	if s.hashes[kind] == nil {
		s.hashes[kind] = make(map[string]string)
	}
	s.hashes[kind][key] = hash
}

func (s *State) forget(kind Kind, key string) {
	if id, ok := s.mappings[kind][key]; ok && s.owners[kind][id] == key {
		delete(s.owners[kind], id)
	}
	delete(s.mappings[kind], key)
	delete(s.hashes[kind], key)
}
