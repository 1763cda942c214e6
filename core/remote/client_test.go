package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/v1/", OrganizationID: "1", TimeoutSeconds: 5}, nil, nil)
}

func TestClientCreate(t *testing.T) {
	t.Run("returns numeric id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/organizations/1/events", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Concert", body["name"])

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 42}`))
		})

		id, err := client.Create(context.Background(), CollectionEvents, map[string]string{"name": "Concert"})
		require.NoError(t, err)
		assert.Equal(t, "42", id)
	})

	t.Run("returns string id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": "a-1"}`))
		})

		id, err := client.Create(context.Background(), CollectionPlaces, map[string]string{"name": "Halle"})
		require.NoError(t, err)
		assert.Equal(t, "a-1", id)
	})

	t.Run("missing id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.Create(context.Background(), CollectionPlaces, map[string]string{})
		assert.ErrorContains(t, err, "carries no id")
	})

	t.Run("validation error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"errors": [{"field": "photo", "message": "Unsupported image"}]}`))
		})

		_, err := client.Create(context.Background(), CollectionEvents, map[string]string{})
		ve, ok := IsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "photo", ve.Field)
		assert.Equal(t, "Unsupported image", ve.Detail)
	})

	t.Run("unexpected status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("oops"))
		})

		_, err := client.Create(context.Background(), CollectionEvents, map[string]string{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "oops", apiErr.Message)
		assert.False(t, IsNotFound(err))
	})
}

func TestClientUpdateDelete(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPut:
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/v1/events/404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	require.NoError(t, client.Update(ctx, CollectionPlaces, "5", map[string]string{"name": "Halle"}))
	require.NoError(t, client.Delete(ctx, CollectionEvents, "7"))

	err := client.Delete(ctx, CollectionEvents, "404")
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, []string{
		"PUT /api/v1/places/5",
		"DELETE /api/v1/events/7",
		"DELETE /api/v1/events/404",
	}, calls)
}

func TestClientFindByName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/organizations/1/organizers", r.URL.Path)
		assert.Equal(t, "Bad Harzburg", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"items": [{"id": 3, "name": "Bad Harzburg Tourismus"}, {"id": 4, "name": "Bad Harzburg"}]}`))
	})

	id, found, err := client.FindByName(context.Background(), CollectionOrganizers, "Bad Harzburg")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "4", id)
}

func TestClientFindByNameMiss(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"id": 3, "name": "Goslar Tourismus"}]}`))
	})

	_, found, err := client.FindByName(context.Background(), CollectionOrganizers, "Goslar")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientListCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/event-categories", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"items": [{"id": 1, "name": "Art"}, {"id": 2, "name": "Music"}], "has_next": true}`))
		case "2":
			_, _ = w.Write([]byte(`{"items": [{"id": 3, "name": "Tour"}], "has_next": false}`))
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	})

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{
		{ID: "1", Name: "Art"},
		{ID: "2", Name: "Music"},
		{ID: "3", Name: "Tour"},
	}, categories)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected ValidationError
	}{
		{"field list", `{"errors": [{"field": "name", "message": "required"}]}`, ValidationError{Field: "name", Detail: "required"}},
		{"message only", `{"message": "bad request"}`, ValidationError{Detail: "bad request"}},
		{"not json", `nope`, ValidationError{Detail: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, *parseValidation([]byte(tt.body)))
		})
	}
}
