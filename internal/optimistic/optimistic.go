// Package optimistic implements local-first mutation with exact rollback.
//
// A mutation that must feel instantaneous (marking a medication taken)
// flips local state before the backend confirms it. If the write fails,
// the literal pre-mutation snapshot is restored - not a recomputed
// inverse, which would double-toggle if two mutations ever raced.
package optimistic

import "context"

// Update applies next to local state via set, then runs commit. On commit
// failure the snapshot taken from get beforehand is restored and the error
// is returned unchanged. The caller keeps local state as-is on success;
// any reconciliation with a server-returned canonical value is the
// caller's decision.
//
// Callers are responsible for ensuring at most one Update is in flight
// per field per entity; the helper has no entity knowledge.
func Update[T any](ctx context.Context, get func() T, set func(T), next T, commit func(context.Context) error) error {
	snapshot := get()
	set(next)
	if err := commit(ctx); err != nil {
		set(snapshot)
		return err
	}
	return nil
}
