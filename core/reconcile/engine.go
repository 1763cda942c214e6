package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Writer creates and updates remote entities of one kind.
type Writer interface {
	Create(ctx context.Context, payload Payload) (WriteResult, error)
	Update(ctx context.Context, remoteID string, payload Payload) (WriteResult, error)
}

// Finder is an optional Writer capability: it looks up an existing remote
// entity matching payload so an unmapped key can adopt it instead of
// creating a second one.
type Finder interface {
	Find(ctx context.Context, payload Payload) (remoteID string, found bool, err error)
}

// Deleter removes a remote entity. Implementations treat an already missing
// entity as deleted.
type Deleter interface {
	Delete(ctx context.Context, remoteID string) error
}

// Reconciler applies the three-way insert/update/skip decision for observed
// entities and keeps the store and the run state in step with the remote.
type Reconciler struct {
	store   Store
	state   *State
	summary *Summary
	logger  *zap.Logger
}

// NewReconciler creates a Reconciler. summary may be nil.
func NewReconciler(store Store, state *State, summary *Summary, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, state: state, summary: summary, logger: logger}
}

// State returns the run state the reconciler operates on.
func (r *Reconciler) State() *State {
	return r.state
}

// Apply reconciles one observed entity and returns its remote id.
//
// Without a mapping the entity is created (or adopted through Finder when no
// other key owns the match) and the mapping stored before the hash. With a mapping and an equal hash nothing is
// sent. Otherwise the remote entity is updated and the new hash stored.
// Callers mark the key observed before Apply so a failure here never retires it.
func (r *Reconciler) Apply(ctx context.Context, kind Kind, key string, payload Payload, w Writer) (string, Outcome, error) {
	hash, err := ContentHash(payload)
	if err != nil {
		return "", "", err
	}

	remoteID, mapped := r.state.RemoteID(kind, key)
	adopted := false
	if !mapped {
		if finder, ok := w.(Finder); ok {
			id, found, err := finder.Find(ctx, payload)
			if err != nil {
				return "", "", fmt.Errorf("failed to look up existing %s: %w", kind, err)
			}
			if owner, owned := r.state.Owner(kind, id); found && owned {
				r.logger.Debug("Remote match already mapped to another key, creating",
					zap.String("kind", string(kind)),
					zap.String("key", key),
					zap.String("owner", owner),
					zap.String("remote_id", id))
				found = false
			}
			if found {
				if err := r.setMapping(ctx, kind, key, id); err != nil {
					return "", "", err
				}
				r.logger.Info("Adopted existing remote entity",
					zap.String("kind", string(kind)),
					zap.String("key", key),
					zap.String("remote_id", id))
				remoteID, mapped, adopted = id, true, true
			}
		}
	}

	if !mapped {
		res, err := r.write(kind, key, payload, func(p Payload) (WriteResult, error) {
			return w.Create(ctx, p)
		})
		if err != nil {
			return "", "", err
		}
		if res.RemoteID == "" {
			return "", "", errors.New("remote returned no id for created entity")
		}
		if err := r.setMapping(ctx, kind, key, res.RemoteID); err != nil {
			return "", "", err
		}
		if err := r.setHash(ctx, kind, key, hash); err != nil {
			return res.RemoteID, "", err
		}
		r.record(kind, OutcomeNew)
		return res.RemoteID, OutcomeNew, nil
	}

	if !adopted {
		if stored, ok := r.state.Hash(kind, key); ok && stored == hash {
			r.record(kind, OutcomeUnchanged)
			return remoteID, OutcomeUnchanged, nil
		}
	}

	if _, err := r.write(kind, key, payload, func(p Payload) (WriteResult, error) {
		return w.Update(ctx, remoteID, p)
	}); err != nil {
		return remoteID, "", err
	}
	if err := r.setHash(ctx, kind, key, hash); err != nil {
		return remoteID, "", err
	}
	r.record(kind, OutcomeUpdated)
	return remoteID, OutcomeUpdated, nil
}

// Skip records an observed entity that was not sent to the remote.
func (r *Reconciler) Skip(kind Kind) {
	r.record(kind, OutcomeUnchanged)
}

// Duplicate records a rejected repeated key.
func (r *Reconciler) Duplicate(kind Kind) {
	r.record(kind, OutcomeDuplicate)
}

// Fail records a failed entity.
func (r *Reconciler) Fail(kind Kind) {
	if r.summary != nil {
		r.summary.For(kind).Failed++
	}
}

// write performs call and, when the remote rejects one field, strips that
// field and retries exactly once.
func (r *Reconciler) write(kind Kind, key string, payload Payload, call func(Payload) (WriteResult, error)) (WriteResult, error) {
	res, err := call(payload)
	if err != nil {
		return res, err
	}
	if res.Rejected == nil {
		return res, nil
	}

	stripped, ok := payload.Strip(res.Rejected.Field)
	if !ok {
		return res, &RejectedError{Rejection: *res.Rejected}
	}
	r.logger.Warn("Remote rejected field, retrying without it",
		zap.String("kind", string(kind)),
		zap.String("key", key),
		zap.String("field", res.Rejected.Field),
		zap.String("detail", res.Rejected.Detail))

	retry, err := call(stripped)
	if err != nil {
		return retry, err
	}
	if retry.Rejected != nil {
		return retry, &RejectedError{Rejection: *retry.Rejected, Retried: true}
	}
	return retry, nil
}

func (r *Reconciler) setMapping(ctx context.Context, kind Kind, key, remoteID string) error {
	if err := r.store.SetMapping(ctx, kind, key, remoteID); err != nil {
		return fmt.Errorf("failed to store mapping: %w", err)
	}
	r.state.setMapping(kind, key, remoteID)
	return nil
}

func (r *Reconciler) setHash(ctx context.Context, kind Kind, key, hash string) error {
	if err := r.store.SetHash(ctx, kind, key, hash); err != nil {
		return fmt.Errorf("failed to store hash: %w", err)
	}
	r.state.setHash(kind, key, hash)
	return nil
}

func (r *Reconciler) record(kind Kind, o Outcome) {
	if r.summary != nil {
		r.summary.For(kind).Record(o)
	}
}
