package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-sync/core/logger"
	"event-sync/core/reconcile"
	"event-sync/feature/events/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enumerator lists the source records of one run. since is the start of the
// previous run, nil for a full pass.
type Enumerator interface {
	List(ctx context.Context, since *time.Time) ([]source.Record, error)
}

// Fetcher is an optional Enumerator capability completing a listed record
// with its full content. It is only called for records that are reconciled.
type Fetcher interface {
	Fetch(ctx context.Context, rec source.Record) (source.Record, error)
}

// Options controls one run.
type Options struct {
	// Full ignores the stored last run and reconciles every record.
	Full bool
}

// Importer synchronizes the source catalog into the remote catalog.
type Importer struct {
	store      reconcile.Store
	enumerator Enumerator
	client     RemoteClient
	baseURL    string
	logger     *zap.Logger
	now        func() time.Time
}

// NewImporter creates an Importer. baseURL resolves relative source links.
func NewImporter(store reconcile.Store, enumerator Enumerator, client RemoteClient, baseURL string, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		store:      store,
		enumerator: enumerator,
		client:     client,
		baseURL:    baseURL,
		logger:     logger,
		now:        time.Now,
	}
}

// run is the state of one pass.
type run struct {
	*Importer
	logger      *zap.Logger
	state       *reconcile.State
	reconciler  *reconcile.Reconciler
	writers     map[reconcile.Kind]reconcile.Writer
	categories  *Categories
	lastRun     *time.Time
	externalIDs map[string]bool
	resolved    map[reconcile.Kind]map[string]string
	failed      map[reconcile.Kind]map[string]error
}

// Run performs one synchronization pass and returns its summary.
//
// Failing to read the stored state or to enumerate the source aborts the run
// with a *reconcile.FatalError before anything is purged or the run
// timestamp moves. A run timestamp that cannot be stored is a fatal error too,
// returned with the summary. Failures of single records are logged and counted.
func (imp *Importer) Run(ctx context.Context, opts Options) (*reconcile.Summary, error) {
	startedAt := imp.now().UTC()
	summary := reconcile.NewSummary(uuid.NewString(), startedAt)
	l := logger.WithRun(imp.logger, summary.RunID)

	lastRun, err := imp.store.LastRun(ctx)
	if err != nil {
		return summary, reconcile.NewFatalError("load_state", err)
	}
	if opts.Full {
		lastRun = nil
	}
	summary.Incremental = lastRun != nil
	l.Info("Starting run", zap.Bool("incremental", summary.Incremental))

	state, err := reconcile.LoadState(ctx, imp.store, reconcile.Kinds...)
	if err != nil {
		return summary, reconcile.NewFatalError("load_state", err)
	}

	r := &run{
		Importer:    imp,
		logger:      l,
		state:       state,
		reconciler:  reconcile.NewReconciler(imp.store, state, summary, l),
		writers:     newWriters(imp.client),
		categories:  LoadCategories(ctx, imp.client, l),
		lastRun:     lastRun,
		externalIDs: make(map[string]bool),
		resolved:    make(map[reconcile.Kind]map[string]string),
		failed:      make(map[reconcile.Kind]map[string]error),
	}

	records, err := imp.enumerator.List(ctx, lastRun)
	if err != nil {
		return summary, reconcile.NewFatalError("enumerate", err)
	}
	l.Info("Enumerated source", zap.Int("records", len(records)))

	for _, rec := range records {
		if err := r.process(ctx, rec); err != nil {
			l.Error("Failed to import record", zap.Error(err))
			r.reconciler.Fail(reconcile.KindEvent)
		}
	}

	deleters := map[reconcile.Kind]reconcile.Deleter{reconcile.KindEvent: eventDeleter{client: imp.client}}
	actions := reconcile.PlanPurge(state, deleters)
	executed, err := r.reconciler.ApplyPurge(ctx, actions, deleters)
	if err != nil {
		l.Warn("Purge incomplete, failed entries are retried next run", zap.Int("planned", len(actions)), zap.Int("executed", executed))
	}

	summary.FinishedAt = imp.now().UTC()
	if err := imp.store.SetLastRun(ctx, startedAt); err != nil {
		return summary, reconcile.NewFatalError("persist_run", err)
	}

	total := summary.Total()
	l.Info("Run finished",
		zap.Int("new", total.New),
		zap.Int("updated", total.Updated),
		zap.Int("unchanged", total.Unchanged),
		zap.Int("deleted", total.Deleted),
		zap.Int("failed", total.Failed),
		zap.Int("duplicates", total.Duplicates),
		zap.Duration("duration", summary.FinishedAt.Sub(startedAt)))
	return summary, nil
}

// process reconciles one record: organizer, then place, then event.
func (r *run) process(ctx context.Context, rec source.Record) error {
	key, err := EventKey(rec)
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, "", err)
	}
	if r.state.IsObserved(reconcile.KindEvent, key) {
		r.logger.Warn("Duplicate uid, skipping record", zap.String("key", key))
		r.reconciler.Duplicate(reconcile.KindEvent)
		return nil
	}
	// A repeated externalId leaves the uid unobserved so an older mapping of
	// it is still retired.
	ext := rec.String(fieldExternalID)
	if ext != "" && r.externalIDs[ext] {
		r.logger.Warn("Duplicate externalId, skipping record", zap.String("key", key), zap.String("external_id", ext))
		r.reconciler.Duplicate(reconcile.KindEvent)
		return nil
	}
	r.state.Observe(reconcile.KindEvent, key)
	if ext != "" {
		r.externalIDs[ext] = true
	}

	organizerKey, err := OrganizerKey(rec)
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, key, err)
	}
	placeKey, err := PlaceKey(organizerKey, rec)
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, key, err)
	}

	if r.unchangedSince(rec, key) {
		// Keep the referenced entities alive without reconciling them.
		r.state.Observe(reconcile.KindOrganizer, organizerKey)
		r.state.Observe(reconcile.KindPlace, placeKey)
		r.reconciler.Skip(reconcile.KindEvent)
		return nil
	}

	if fetcher, ok := r.enumerator.(Fetcher); ok {
		full, err := fetcher.Fetch(ctx, rec)
		if err != nil {
			return reconcile.NewRecordError(reconcile.KindEvent, key, fmt.Errorf("failed to fetch record: %w", err))
		}
		rec = full
	}

	organizerID, err := r.resolve(ctx, reconcile.KindOrganizer, organizerKey, BuildOrganizer(rec))
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, key, err)
	}
	placeID, err := r.resolve(ctx, reconcile.KindPlace, placeKey, BuildPlace(rec))
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, key, err)
	}

	event, err := BuildEvent(rec, r.baseURL, placeID, organizerID, r.categories)
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, key, err)
	}
	id, outcome, err := r.reconciler.Apply(ctx, reconcile.KindEvent, key, event, r.writers[reconcile.KindEvent])
	if err != nil {
		return reconcile.NewRecordError(reconcile.KindEvent, key, err)
	}
	r.logger.Debug("Reconciled event",
		zap.String("key", key),
		zap.String("remote_id", id),
		zap.String("outcome", string(outcome)))
	return nil
}

// unchangedSince reports whether an incremental run may skip the record:
// it was modified before the previous run and is already mapped.
func (r *run) unchangedSince(rec source.Record, key string) bool {
	if r.lastRun == nil || rec.Modified.IsZero() || !rec.Modified.Before(*r.lastRun) {
		return false
	}
	_, mapped := r.state.RemoteID(reconcile.KindEvent, key)
	return mapped
}

// resolve reconciles a place or organizer once per run and returns its
// remote id. Later records with the same key reuse the first outcome.
func (r *run) resolve(ctx context.Context, kind reconcile.Kind, key string, payload reconcile.Payload) (string, error) {
	if id, ok := r.resolved[kind][key]; ok {
		return id, nil
	}
	if err, ok := r.failed[kind][key]; ok {
		return "", fmt.Errorf("%s %q: %w: %v", kind, key, reconcile.ErrDependencyUnavailable, err)
	}

	r.state.Observe(kind, key)
	id, outcome, err := r.reconciler.Apply(ctx, kind, key, payload, r.writers[kind])
	if err != nil {
		if r.failed[kind] == nil {
			r.failed[kind] = make(map[string]error)
		}
		r.failed[kind][key] = err
		r.reconciler.Fail(kind)
		return "", fmt.Errorf("failed to reconcile %s %q: %w", kind, key, err)
	}

	if r.resolved[kind] == nil {
		r.resolved[kind] = make(map[string]string)
	}
	r.resolved[kind][key] = id
	r.logger.Debug("Reconciled "+string(kind),
		zap.String("key", key),
		zap.String("remote_id", id),
		zap.String("outcome", string(outcome)))
	return id, nil
}

// IsDependencyFailure reports whether a record failed because its place or
// organizer could not be reconciled earlier in the run.
func IsDependencyFailure(err error) bool {
	return errors.Is(err, reconcile.ErrDependencyUnavailable)
}
