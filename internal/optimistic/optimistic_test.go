package optimistic

import (
	"context"
	"errors"
	"testing"
)

func TestUpdateCommitSuccess(t *testing.T) {
	value := false
	committed := false

	err := Update(context.Background(),
		func() bool { return value },
		func(v bool) { value = v },
		true,
		func(ctx context.Context) error {
			// Local state is already flipped when the write is issued.
			if !value {
				t.Error("expected optimistic value during commit")
			}
			committed = true
			return nil
		})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !committed {
		t.Error("commit was not called")
	}
	if !value {
		t.Error("value should remain at the optimistic state after success")
	}
}

func TestUpdateRollbackOnFailure(t *testing.T) {
	value := false
	commitErr := errors.New("backend down")

	err := Update(context.Background(),
		func() bool { return value },
		func(v bool) { value = v },
		true,
		func(ctx context.Context) error { return commitErr })

	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error back, got %v", err)
	}
	if value {
		t.Error("value should be restored to the exact snapshot on failure")
	}
}

func TestUpdateRollbackRestoresSnapshotNotInverse(t *testing.T) {
	// If the committed value drifts between snapshot and rollback, the
	// restore must still be the snapshot, not a negation of the optimistic
	// value.
	value := "committed"

	err := Update(context.Background(),
		func() string { return value },
		func(v string) { value = v },
		"pending",
		func(ctx context.Context) error { return errors.New("nope") })

	if err == nil {
		t.Fatal("expected error")
	}
	if value != "committed" {
		t.Errorf("value = %q, want literal snapshot %q", value, "committed")
	}
}
