package events

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"event-sync/core/database"
	"event-sync/core/mapping"
	"event-sync/core/remote"
	"event-sync/feature/events/models"
	"event-sync/feature/events/source"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRemote is an in-memory remote catalog recording every call.
type fakeRemote struct {
	mu         sync.Mutex
	nextID     int
	entities   map[string]map[string]any
	existing   map[string]map[string]string
	calls      []string
	categories []remote.Category
	catErr     error
	createErr  map[string]error
	rejectOnce map[string]string
	deleteErr  map[string]error
	// findCreated makes FindByName also match entities created so far.
	findCreated bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		entities:   make(map[string]map[string]any),
		existing:   make(map[string]map[string]string),
		createErr:  make(map[string]error),
		rejectOnce: make(map[string]string),
		deleteErr:  make(map[string]error),
		categories: []remote.Category{
			{ID: "1", Name: "Music"},
			{ID: "2", Name: "Art"},
		},
	}
}

func (f *fakeRemote) ListCategories(ctx context.Context) ([]remote.Category, error) {
	return f.categories, f.catErr
}

func (f *fakeRemote) Create(ctx context.Context, collection string, payload any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create "+collection)

	if err := f.createErr[collection]; err != nil {
		return "", err
	}
	if field, ok := f.rejectOnce[collection]; ok {
		delete(f.rejectOnce, collection)
		return "", &remote.ValidationError{Field: field, Detail: "invalid value"}
	}

	f.nextID++
	id := strconv.Itoa(f.nextID)
	if f.entities[collection] == nil {
		f.entities[collection] = make(map[string]any)
	}
	f.entities[collection][id] = payload
	return id, nil
}

func (f *fakeRemote) Update(ctx context.Context, collection, id string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update "+collection)

	if f.entities[collection] == nil {
		f.entities[collection] = make(map[string]any)
	}
	f.entities[collection][id] = payload
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete "+collection)

	if err := f.deleteErr[id]; err != nil {
		return err
	}
	delete(f.entities[collection], id)
	return nil
}

func (f *fakeRemote) FindByName(ctx context.Context, collection, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "find "+collection)

	if id, ok := f.existing[collection][name]; ok {
		return id, true, nil
	}
	if f.findCreated {
		for id, payload := range f.entities[collection] {
			if nameOf(payload) == name {
				return id, true, nil
			}
		}
	}
	return "", false, nil
}

func nameOf(payload any) string {
	switch v := payload.(type) {
	case models.Place:
		return v.Name
	case models.Organizer:
		return v.Name
	}
	return ""
}

// count returns how often op ("create events", ...) was called.
func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

// writes returns the number of create, update and delete calls.
func (f *fakeRemote) writes() int {
	n := 0
	for _, col := range []string{remote.CollectionEvents, remote.CollectionPlaces, remote.CollectionOrganizers} {
		n += f.count("create "+col) + f.count("update "+col) + f.count("delete "+col)
	}
	return n
}

func (f *fakeRemote) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// fakeSource serves a fixed record list and remembers the since argument.
type fakeSource struct {
	records []source.Record
	err     error
	sinces  []*time.Time
}

func (s *fakeSource) List(ctx context.Context, since *time.Time) ([]source.Record, error) {
	s.sinces = append(s.sinces, since)
	return s.records, s.err
}

// fetchingSource also completes records and counts the fetches.
type fetchingSource struct {
	fakeSource
	fetched []string
}

func (s *fetchingSource) Fetch(ctx context.Context, rec source.Record) (source.Record, error) {
	s.fetched = append(s.fetched, rec.String(fieldUID))
	return rec, nil
}

func setupMappingStore(t *testing.T) *mapping.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	store := mapping.NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// clock returns successive timestamps a minute apart.
func clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(time.Minute)
		return t
	}
}

func newTestImporter(t *testing.T, src Enumerator, client RemoteClient) (*Importer, *mapping.Store) {
	t.Helper()
	store := setupMappingStore(t)
	imp := NewImporter(store, src, client, "https://www.harzinfo.de", zap.NewNop())
	imp.now = clock(time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC))
	return imp, store
}

func eventRecord(uid, title string) source.Record {
	return source.Record{
		Organizer: "Goslar",
		Fields: map[string]any{
			fieldUID:        uid,
			fieldTitle:      title,
			fieldDate:       "2026-11-01T19:30",
			fieldLocation:   "Kaiserpfalz",
			fieldStreet:     "Kaiserbleek 6",
			fieldZip:        "38640",
			fieldCity:       "Goslar",
			fieldLatitude:   "51.9",
			fieldLongitude:  "10.43",
			fieldLink:       "/events/" + uid,
			fieldCategories: []any{"Konzert/Musik", "Open Air"},
		},
	}
}

var errRemoteDown = errors.New("remote unavailable")
