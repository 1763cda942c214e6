package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadState(t *testing.T) {
	ctx := context.Background()

	t.Run("loads mappings and hashes", func(t *testing.T) {
		store := newMemStore()
		store.mappings[KindEvent] = map[string]string{"E1": "r1"}
		store.hashes[KindEvent] = map[string]string{"E1": "h1"}

		state, err := LoadState(ctx, store, Kinds...)
		require.NoError(t, err)

		id, ok := state.RemoteID(KindEvent, "E1")
		assert.True(t, ok)
		assert.Equal(t, "r1", id)
		h, ok := state.Hash(KindEvent, "E1")
		assert.True(t, ok)
		assert.Equal(t, "h1", h)
		assert.Equal(t, 1, state.MappingCount(KindEvent))
		assert.Equal(t, 0, state.MappingCount(KindPlace))
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMemStore()
		store.failLoad = errors.New("db down")

		_, err := LoadState(ctx, store, KindEvent)
		assert.ErrorContains(t, err, "failed to load event mappings")
	})
}

func TestStateObserve(t *testing.T) {
	state := NewState()

	assert.True(t, state.Observe(KindEvent, "E1"))
	assert.False(t, state.Observe(KindEvent, "E1"))
	assert.True(t, state.Observe(KindPlace, "E1"), "kinds have separate key spaces")
	assert.True(t, state.IsObserved(KindEvent, "E1"))
	assert.False(t, state.IsObserved(KindOrganizer, "E1"))
}

func TestStateOwner(t *testing.T) {
	state := NewState()
	state.setMapping(KindPlace, "Goslar:Kaiserpfalz", "p1")

	key, ok := state.Owner(KindPlace, "p1")
	assert.True(t, ok)
	assert.Equal(t, "Goslar:Kaiserpfalz", key)
	_, ok = state.Owner(KindOrganizer, "p1")
	assert.False(t, ok)

	state.forget(KindPlace, "Goslar:Kaiserpfalz")
	_, ok = state.Owner(KindPlace, "p1")
	assert.False(t, ok)
}

func TestStateRetired(t *testing.T) {
	state := NewState()
	state.setMapping(KindEvent, "b", "r2")
	state.setMapping(KindEvent, "a", "r1")
	state.setMapping(KindEvent, "c", "r3")
	state.setHash(KindEvent, "orphan", "h")

	state.Observe(KindEvent, "b")

	assert.Equal(t, []string{"a", "c", "orphan"}, state.Retired(KindEvent))
	assert.Empty(t, state.Retired(KindPlace))
}
