package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type memStore struct {
	mappings map[Kind]map[string]string
	hashes   map[Kind]map[string]string
	lastRun  *time.Time

	failLoad       error
	failSetMapping error
	failSetHash    error
	failDelete     error
}

func newMemStore() *memStore {
	return &memStore{
		mappings: map[Kind]map[string]string{},
		hashes:   map[Kind]map[string]string{},
	}
}

func (m *memStore) Mappings(_ context.Context, kind Kind) (map[string]string, error) {
	if m.failLoad != nil {
		return nil, m.failLoad
	}
	out := map[string]string{}
	for k, v := range m.mappings[kind] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Hashes(_ context.Context, kind Kind) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.hashes[kind] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) SetMapping(_ context.Context, kind Kind, key, remoteID string) error {
	if m.failSetMapping != nil {
		return m.failSetMapping
	}
	if m.mappings[kind] == nil {
		m.mappings[kind] = map[string]string{}
	}
	if _, ok := m.mappings[kind][key]; !ok {
		m.mappings[kind][key] = remoteID
	}
	return nil
}

func (m *memStore) SetHash(_ context.Context, kind Kind, key, hash string) error {
	if m.failSetHash != nil {
		return m.failSetHash
	}
	if m.hashes[kind] == nil {
		m.hashes[kind] = map[string]string{}
	}
	m.hashes[kind][key] = hash
	return nil
}

func (m *memStore) DeleteMapping(_ context.Context, kind Kind, key string) error {
	if m.failDelete != nil {
		return m.failDelete
	}
	delete(m.mappings[kind], key)
	return nil
}

func (m *memStore) DeleteHash(_ context.Context, kind Kind, key string) error {
	delete(m.hashes[kind], key)
	return nil
}

func (m *memStore) LastRun(context.Context) (*time.Time, error) {
	return m.lastRun, nil
}

func (m *memStore) SetLastRun(_ context.Context, t time.Time) error {
	m.lastRun = &t
	return nil
}

type testPayload struct {
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

func (p testPayload) Strip(field string) (Payload, bool) {
	if field == "photo" && p.Photo != "" {
		p.Photo = ""
		return p, true
	}
	return p, false
}

type writeCall struct {
	op       string
	remoteID string
	payload  Payload
}

// fakeWriter hands out sequential ids and replays queued results.
type fakeWriter struct {
	calls   []writeCall
	results []WriteResult
	err     error
	nextID  int
}

func (w *fakeWriter) respond(op, remoteID string, p Payload) (WriteResult, error) {
	w.calls = append(w.calls, writeCall{op: op, remoteID: remoteID, payload: p})
	if w.err != nil {
		return WriteResult{}, w.err
	}
	if len(w.results) > 0 {
		res := w.results[0]
		w.results = w.results[1:]
		if res.Rejected == nil && op == "create" && res.RemoteID == "" {
			w.nextID++
			res.RemoteID = fmt.Sprintf("r%d", w.nextID)
		}
		return res, nil
	}
	if op == "create" {
		w.nextID++
		return Accepted(fmt.Sprintf("r%d", w.nextID)), nil
	}
	return Accepted(""), nil
}

func (w *fakeWriter) Create(_ context.Context, p Payload) (WriteResult, error) {
	return w.respond("create", "", p)
}

func (w *fakeWriter) Update(_ context.Context, remoteID string, p Payload) (WriteResult, error) {
	return w.respond("update", remoteID, p)
}

func (w *fakeWriter) count(op string) int {
	n := 0
	for _, c := range w.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

type findingWriter struct {
	fakeWriter
	found map[string]string
	err   error
}

func (w *findingWriter) Find(_ context.Context, p Payload) (string, bool, error) {
	if w.err != nil {
		return "", false, w.err
	}
	id, ok := w.found[p.(testPayload).Name]
	return id, ok, nil
}

type fakeDeleter struct {
	deleted []string
	fail    map[string]bool
}

func (d *fakeDeleter) Delete(_ context.Context, remoteID string) error {
	if d.fail[remoteID] {
		return errors.New("remote unavailable")
	}
	d.deleted = append(d.deleted, remoteID)
	return nil
}
