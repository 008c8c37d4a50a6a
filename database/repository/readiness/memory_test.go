package readinessRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"meetpoint/models"
)

func TestSetFlag_ConcurrentPartiesKeepBothFlags(t *testing.T) {
	ctx := context.Background()

	// Both parties flag ready at the same moment. Neither write may be
	// lost, or the session would never see both sides ready.
	for i := 0; i < 200; i++ {
		store := NewMemoryReadinessStore()

		var wg sync.WaitGroup
		for _, role := range []string{models.RoleRequester, models.RoleProvider} {
			wg.Add(1)
			go func(role string) {
				defer wg.Done()
				if _, err := store.SetFlag(ctx, "s1", role, true, time.Hour); err != nil {
					t.Errorf("SetFlag(%s): %v", role, err)
				}
			}(role)
		}
		wg.Wait()

		state, err := store.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !state.RequesterReady || !state.ProviderReady {
			t.Fatalf("iteration %d: flag lost, got requester=%v provider=%v",
				i, state.RequesterReady, state.ProviderReady)
		}
	}
}

func TestSetFlag_UnsetClearsOnlyOwnFlag(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReadinessStore()

	if _, err := store.SetFlag(ctx, "s1", models.RoleRequester, true, time.Hour); err != nil {
		t.Fatalf("SetFlag requester: %v", err)
	}
	if _, err := store.SetFlag(ctx, "s1", models.RoleProvider, true, time.Hour); err != nil {
		t.Fatalf("SetFlag provider: %v", err)
	}

	state, err := store.SetFlag(ctx, "s1", models.RoleRequester, false, time.Hour)
	if err != nil {
		t.Fatalf("SetFlag unset: %v", err)
	}
	if state.RequesterReady {
		t.Fatal("requester flag should be cleared")
	}
	if state.RequesterReadyAt != nil {
		t.Fatal("requester timestamp should be cleared")
	}
	if !state.ProviderReady {
		t.Fatal("provider flag must survive the requester's unset")
	}
}

func TestSetFlag_UnknownRole(t *testing.T) {
	store := NewMemoryReadinessStore()
	if _, err := store.SetFlag(context.Background(), "s1", "bystander", true, time.Hour); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
