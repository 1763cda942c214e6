// Package reconcile keeps a remote system of record in step with a
// re-scraped source catalog.
//
// Each source entity is identified by a stable source key. The engine keeps,
// per kind, a durable mapping from source key to remote id and the content
// hash of the payload last sent. One run then takes, for every observed
// entity, one of three decisions:
//
//   - no mapping: create remotely, store the mapping, then the hash
//   - mapping and equal hash: skip, no remote call
//   - mapping and different hash: update remotely, store the new hash
//
// Keys that have a mapping but were not observed during the run are retired
// by the purge in reverse dependency order (events, places, organizers).
//
// # Components
//
// State holds the loaded mappings, hashes and the observed-key sets of one run.
// Reconciler applies the decision above through a kind-specific Writer and
// records outcomes into a Summary. PlanPurge and ApplyPurge retire what was
// not observed.
//
// # Usage Example
//
//	state, err := reconcile.LoadState(ctx, store, reconcile.Kinds...)
//	r := reconcile.NewReconciler(store, state, summary, logger)
//
//	if state.Observe(reconcile.KindOrganizer, name) {
//	    id, outcome, err := r.Apply(ctx, reconcile.KindOrganizer, name, payload, writer)
//	}
//
//	actions := reconcile.PlanPurge(state, deleters)
//	executed, err := r.ApplyPurge(ctx, actions, deleters)
package reconcile
