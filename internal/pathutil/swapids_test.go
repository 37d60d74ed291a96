package pathutil

import "testing"

// TestSwapIDsNoopWhenUnconfigured covers the common case where iolog-uid/gid
// are left at their -1 default (spec.md §6): SwapIDs must not touch the
// process's effective ids, and restore must be idempotent.
func TestSwapIDsNoopWhenUnconfigured(t *testing.T) {
	restore, err := SwapIDs(-1, -1)
	if err != nil {
		t.Fatalf("SwapIDs: %v", err)
	}
	if err := restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := restore(); err != nil {
		t.Fatalf("second restore call should be a no-op: %v", err)
	}
}
