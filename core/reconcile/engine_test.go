package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReconciler(t *testing.T, store *memStore) (*Reconciler, *Summary) {
	t.Helper()
	state, err := LoadState(context.Background(), store, Kinds...)
	require.NoError(t, err)
	summary := NewSummary("run", time.Now())
	return NewReconciler(store, state, summary, zap.NewNop()), summary
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("insert stores mapping and hash", func(t *testing.T) {
		store := newMemStore()
		r, summary := newTestReconciler(t, store)
		w := &fakeWriter{}

		id, outcome, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, w)
		require.NoError(t, err)
		assert.Equal(t, "r1", id)
		assert.Equal(t, OutcomeNew, outcome)
		assert.Equal(t, "r1", store.mappings[KindEvent]["E1"])
		assert.NotEmpty(t, store.hashes[KindEvent]["E1"])
		assert.Equal(t, 1, summary.For(KindEvent).New)
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		store := newMemStore()
		w := &fakeWriter{}

		r, _ := newTestReconciler(t, store)
		_, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, w)
		require.NoError(t, err)

		r, summary := newTestReconciler(t, store)
		id, outcome, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, w)
		require.NoError(t, err)
		assert.Equal(t, "r1", id)
		assert.Equal(t, OutcomeUnchanged, outcome)
		assert.Len(t, w.calls, 1, "no remote call for unchanged content")
		assert.Equal(t, 1, summary.For(KindEvent).Unchanged)
	})

	t.Run("changed content updates", func(t *testing.T) {
		store := newMemStore()
		store.mappings[KindEvent] = map[string]string{"E1": "r9"}
		store.hashes[KindEvent] = map[string]string{"E1": "stale"}
		r, summary := newTestReconciler(t, store)
		w := &fakeWriter{}

		id, outcome, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "B"}, w)
		require.NoError(t, err)
		assert.Equal(t, "r9", id)
		assert.Equal(t, OutcomeUpdated, outcome)
		require.Len(t, w.calls, 1)
		assert.Equal(t, "update", w.calls[0].op)
		assert.Equal(t, "r9", w.calls[0].remoteID)
		assert.Equal(t, "r9", store.mappings[KindEvent]["E1"], "mapping unchanged")

		expected, _ := ContentHash(testPayload{Name: "B"})
		assert.Equal(t, expected, store.hashes[KindEvent]["E1"])
		assert.Equal(t, 1, summary.For(KindEvent).Updated)
	})

	t.Run("mapping without hash updates", func(t *testing.T) {
		store := newMemStore()
		store.mappings[KindPlace] = map[string]string{"P": "r5"}
		r, _ := newTestReconciler(t, store)
		w := &fakeWriter{}

		_, outcome, err := r.Apply(ctx, KindPlace, "P", testPayload{Name: "P"}, w)
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, outcome)
	})

	t.Run("create failure leaves no mapping", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)
		w := &fakeWriter{err: errors.New("timeout")}

		_, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, w)
		assert.ErrorContains(t, err, "timeout")
		assert.Empty(t, store.mappings[KindEvent])
		assert.Empty(t, store.hashes[KindEvent])
	})

	t.Run("empty remote id", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)

		_, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, emptyIDWriter{})
		assert.ErrorContains(t, err, "no id")
		assert.Empty(t, store.mappings[KindEvent])
	})

	t.Run("rejected field is stripped and retried once", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)
		w := &fakeWriter{results: []WriteResult{FieldRejected("photo", "bad image")}}

		payload := testPayload{Name: "A", Photo: "p.jpg"}
		id, outcome, err := r.Apply(ctx, KindEvent, "E1", payload, w)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNew, outcome)
		assert.NotEmpty(t, id)
		require.Len(t, w.calls, 2)
		assert.Equal(t, testPayload{Name: "A"}, w.calls[1].payload)

		full, _ := ContentHash(payload)
		assert.Equal(t, full, store.hashes[KindEvent]["E1"], "hash of the unstripped payload")
	})

	t.Run("second rejection fails the record", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)
		w := &fakeWriter{results: []WriteResult{
			FieldRejected("photo", "bad image"),
			FieldRejected("name", "too long"),
		}}

		_, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A", Photo: "p.jpg"}, w)
		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.True(t, rejected.Retried)
		assert.Equal(t, "name", rejected.Rejection.Field)
		assert.Len(t, w.calls, 2)
		assert.Empty(t, store.mappings[KindEvent])
	})

	t.Run("rejection of a required field is not retried", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)
		w := &fakeWriter{results: []WriteResult{FieldRejected("name", "required")}}

		_, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, w)
		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.False(t, rejected.Retried)
		assert.Len(t, w.calls, 1)
	})

	t.Run("finder adopts existing remote entity", func(t *testing.T) {
		store := newMemStore()
		r, summary := newTestReconciler(t, store)
		w := &findingWriter{found: map[string]string{"Goslar": "r77"}}

		id, outcome, err := r.Apply(ctx, KindOrganizer, "Goslar", testPayload{Name: "Goslar"}, w)
		require.NoError(t, err)
		assert.Equal(t, "r77", id)
		assert.Equal(t, OutcomeUpdated, outcome)
		assert.Equal(t, 0, w.count("create"))
		assert.Equal(t, 1, w.count("update"))
		assert.Equal(t, "r77", store.mappings[KindOrganizer]["Goslar"])
		assert.Equal(t, 1, summary.For(KindOrganizer).Updated)
	})

	t.Run("finder miss creates", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)
		w := &findingWriter{found: map[string]string{}}

		_, outcome, err := r.Apply(ctx, KindOrganizer, "Goslar", testPayload{Name: "Goslar"}, w)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNew, outcome)
		assert.Equal(t, 1, w.count("create"))
	})

	t.Run("finder match owned by another key creates", func(t *testing.T) {
		store := newMemStore()
		store.mappings[KindPlace] = map[string]string{"Goslar:Kaiserpfalz": "r77"}
		r, summary := newTestReconciler(t, store)
		w := &findingWriter{found: map[string]string{"Kaiserpfalz": "r77"}}

		id, outcome, err := r.Apply(ctx, KindPlace, "Wernigerode:Kaiserpfalz", testPayload{Name: "Kaiserpfalz"}, w)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNew, outcome)
		assert.NotEqual(t, "r77", id)
		assert.Equal(t, 1, w.count("create"))
		assert.Equal(t, 0, w.count("update"))
		assert.Equal(t, "r77", store.mappings[KindPlace]["Goslar:Kaiserpfalz"])
		assert.Equal(t, id, store.mappings[KindPlace]["Wernigerode:Kaiserpfalz"])
		assert.Equal(t, 1, summary.For(KindPlace).New)
	})

	t.Run("finder failure", func(t *testing.T) {
		store := newMemStore()
		r, _ := newTestReconciler(t, store)
		w := &findingWriter{err: errors.New("boom")}

		_, _, err := r.Apply(ctx, KindOrganizer, "Goslar", testPayload{Name: "Goslar"}, w)
		assert.ErrorContains(t, err, "failed to look up existing organizer")
		assert.Empty(t, w.calls)
	})

	t.Run("hash write failure", func(t *testing.T) {
		store := newMemStore()
		store.failSetHash = errors.New("disk full")
		r, _ := newTestReconciler(t, store)

		id, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, &fakeWriter{})
		assert.ErrorContains(t, err, "failed to store hash")
		assert.Equal(t, "r1", id)
		assert.Equal(t, "r1", store.mappings[KindEvent]["E1"], "mapping persisted before hash")
	})

	t.Run("mapping write failure", func(t *testing.T) {
		store := newMemStore()
		store.failSetMapping = errors.New("disk full")
		r, _ := newTestReconciler(t, store)

		_, _, err := r.Apply(ctx, KindEvent, "E1", testPayload{Name: "A"}, &fakeWriter{})
		assert.ErrorContains(t, err, "failed to store mapping")
		assert.Empty(t, store.hashes[KindEvent])
	})
}

func TestCounters(t *testing.T) {
	store := newMemStore()
	r, summary := newTestReconciler(t, store)

	r.Skip(KindEvent)
	r.Duplicate(KindEvent)
	r.Fail(KindPlace)

	assert.Equal(t, 1, summary.For(KindEvent).Unchanged)
	assert.Equal(t, 1, summary.For(KindEvent).Duplicates)
	assert.Equal(t, 1, summary.For(KindPlace).Failed)
	assert.Equal(t, Counts{Unchanged: 1, Duplicates: 1, Failed: 1}, summary.Total())
}

type emptyIDWriter struct{}

func (emptyIDWriter) Create(context.Context, Payload) (WriteResult, error) {
	return WriteResult{}, nil
}

func (emptyIDWriter) Update(context.Context, string, Payload) (WriteResult, error) {
	return WriteResult{}, nil
}
