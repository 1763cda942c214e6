package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// PlanPurge lists the purge actions for every key that has a mapping or a
// hash but was not observed in this run, in PurgeOrder. Kinds with a Deleter
// get their remote entity deleted; the others only lose the local entry.
// It does NOT execute actions; use ApplyPurge for that.
func PlanPurge(state *State, deleters map[Kind]Deleter) []Action {
	var actions []Action
	for _, kind := range PurgeOrder {
		_, canDelete := deleters[kind]
		for _, key := range state.Retired(kind) {
			remoteID, mapped := state.RemoteID(kind, key)
			action := Action{Kind: kind, Key: key, RemoteID: remoteID}
			switch {
			case !mapped:
				action.Type = ActionDropMapping
				action.Reason = "hash without mapping"
			case canDelete:
				action.Type = ActionDeleteRemote
				action.Reason = "not observed in current run"
			default:
				action.Type = ActionDropMapping
				action.Reason = "not observed in current run"
			}
			actions = append(actions, action)
		}
	}
	return actions
}

// ApplyPurge executes purge actions in order. A failed action is logged,
// counted as failed and leaves its mapping in place so the next run retries;
// the remaining actions still run. It returns the number of actions executed
// and the joined failures.
func (r *Reconciler) ApplyPurge(ctx context.Context, actions []Action, deleters map[Kind]Deleter) (executed int, err error) {
	var errs []error
	for _, action := range actions {
		if err := r.applyAction(ctx, action, deleters); err != nil {
			r.logger.Error("Failed to purge entity",
				zap.String("kind", string(action.Kind)),
				zap.String("key", action.Key),
				zap.String("remote_id", action.RemoteID),
				zap.Error(err))
			r.Fail(action.Kind)
			errs = append(errs, NewRecordError(action.Kind, action.Key, err))
			continue
		}
		executed++
		if r.summary != nil {
			r.summary.For(action.Kind).Deleted++
		}
	}
	return executed, errors.Join(errs...)
}

func (r *Reconciler) applyAction(ctx context.Context, action Action, deleters map[Kind]Deleter) error {
	if action.Type == ActionDeleteRemote {
		deleter, ok := deleters[action.Kind]
		if !ok {
			return fmt.Errorf("no deleter for kind %s", action.Kind)
		}
		if err := deleter.Delete(ctx, action.RemoteID); err != nil {
			return fmt.Errorf("failed to delete remote entity: %w", err)
		}
	}

	if err := r.store.DeleteMapping(ctx, action.Kind, action.Key); err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	if err := r.store.DeleteHash(ctx, action.Kind, action.Key); err != nil {
		return fmt.Errorf("failed to delete hash: %w", err)
	}
	r.state.forget(action.Kind, action.Key)
	return nil
}
