package session

import (
	"context"
	"sync"
	"testing"
	"time"

	readinessRepo "meetpoint/database/repository/readiness"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
)

func newTestRendezvous() (*Rendezvous, *sessionRepo.MemorySessionRepo, *readinessRepo.MemoryReadinessStore, *fakeLedger) {
	m, sessions, readiness, led, _ := newTestMachine()
	r := &Rendezvous{
		Sessions:  sessions,
		Readiness: readiness,
		Machine:   m,
		ExtraTTL:  10 * time.Minute,
		Now:       func() time.Time { return testNow },
	}
	return r, sessions, readiness, led
}

func TestSetReady_ProviderOnPendingAutoConfirms(t *testing.T) {
	r, sessions, _, led := newTestRendezvous()
	seedSession(sessions, models.SessionPending)

	state, err := r.SetReady(context.Background(), testSessionID, providerActor(), true)
	if err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if !state.ProviderReady {
		t.Error("provider flag not set")
	}

	s, err := sessions.GetByID(context.Background(), testSessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.Status != models.SessionConfirmed {
		t.Errorf("status = %s, want %s (provider readiness confirms a pending session)", s.Status, models.SessionConfirmed)
	}
	if credits := led.callsFor("credit"); len(credits) != 1 {
		t.Errorf("credits = %d, want 1 (auto-confirm pays the provider)", len(credits))
	}
}

func TestSetReady_RequesterDoesNotConfirm(t *testing.T) {
	r, sessions, _, _ := newTestRendezvous()
	seedSession(sessions, models.SessionPending)

	state, err := r.SetReady(context.Background(), testSessionID, requesterActor(), true)
	if err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if !state.RequesterReady {
		t.Error("requester flag not set")
	}

	s, _ := sessions.GetByID(context.Background(), testSessionID)
	if s.Status != models.SessionPending {
		t.Errorf("status = %s, want %s (requester readiness never confirms)", s.Status, models.SessionPending)
	}
}

func TestSetReady_IsIdempotent(t *testing.T) {
	r, sessions, _, _ := newTestRendezvous()
	seedSession(sessions, models.SessionConfirmed)

	for i := 0; i < 3; i++ {
		state, err := r.SetReady(context.Background(), testSessionID, requesterActor(), true)
		if err != nil {
			t.Fatalf("SetReady call %d failed: %v", i+1, err)
		}
		if !state.RequesterReady || state.ProviderReady {
			t.Errorf("call %d state = %+v, want only requester ready", i+1, state)
		}
	}
}

func TestSetReady_Unset(t *testing.T) {
	r, sessions, _, _ := newTestRendezvous()
	seedSession(sessions, models.SessionConfirmed)

	if _, err := r.SetReady(context.Background(), testSessionID, requesterActor(), true); err != nil {
		t.Fatalf("set: %v", err)
	}
	state, err := r.SetReady(context.Background(), testSessionID, requesterActor(), false)
	if err != nil {
		t.Fatalf("unset: %v", err)
	}
	if state.RequesterReady {
		t.Error("requester flag still set after unset")
	}
}

func TestSetReady_ClosedWindows(t *testing.T) {
	tests := []struct {
		name   string
		status string
		now    time.Time
	}{
		{"in progress", models.SessionInProgress, testNow},
		{"past the end time", models.SessionConfirmed, testNow.Add(3 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sessions, _, _ := newTestRendezvous()
			seedSession(sessions, tt.status)
			r.Now = func() time.Time { return tt.now }

			_, err := r.SetReady(context.Background(), testSessionID, requesterActor(), true)
			if kind := stateKind(t, err); kind != KindRendezvousExpired {
				t.Errorf("kind = %s, want %s", kind, KindRendezvousExpired)
			}
		})
	}

	// Terminal sessions report the same closed window.
	for _, status := range []string{models.SessionCompleted, models.SessionCancelled} {
		t.Run(status, func(t *testing.T) {
			r, sessions, _, _ := newTestRendezvous()
			seedSession(sessions, status)

			_, err := r.SetReady(context.Background(), testSessionID, requesterActor(), true)
			if kind := stateKind(t, err); kind != KindRendezvousExpired {
				t.Errorf("kind = %s, want %s", kind, KindRendezvousExpired)
			}
		})
	}
}

func TestSetReady_StrangerRejected(t *testing.T) {
	r, sessions, _, _ := newTestRendezvous()
	seedSession(sessions, models.SessionConfirmed)

	_, err := r.SetReady(context.Background(), testSessionID,
		models.Party{ID: "req-9", Role: models.RoleRequester}, true)
	if kind := stateKind(t, err); kind != KindNotAuthorized {
		t.Errorf("kind = %s, want %s", kind, KindNotAuthorized)
	}
}

func TestStatus_BothReadyRequiresConfirmed(t *testing.T) {
	r, sessions, readiness, _ := newTestRendezvous()
	seedSession(sessions, models.SessionPending)

	ctx := context.Background()
	if _, err := readiness.SetFlag(ctx, testSessionID, models.RoleRequester, true, time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := readiness.SetFlag(ctx, testSessionID, models.RoleProvider, true, time.Hour); err != nil {
		t.Fatal(err)
	}

	status, err := r.Status(ctx, testSessionID, requesterActor())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.BothReady {
		t.Error("BothReady on a pending session; confirmation is required")
	}
	if !status.CallerReady || !status.OtherPartyReady {
		t.Errorf("flags = %+v, want both visible", status)
	}

	// Once confirmed, the same flags grant the rendezvous.
	if ok, err := sessions.ConditionalTransition(ctx, testSessionID,
		[]string{models.SessionPending}, models.SessionConfirmed, nil); err != nil || !ok {
		t.Fatalf("seed confirm failed: matched=%v err=%v", ok, err)
	}
	status, err = r.Status(ctx, testSessionID, requesterActor())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.BothReady {
		t.Error("BothReady false on a confirmed session with both flags set")
	}
}

func TestStatus_PerspectiveFollowsCaller(t *testing.T) {
	r, sessions, readiness, _ := newTestRendezvous()
	seedSession(sessions, models.SessionConfirmed)

	ctx := context.Background()
	if _, err := readiness.SetFlag(ctx, testSessionID, models.RoleProvider, true, time.Hour); err != nil {
		t.Fatal(err)
	}

	asProvider, err := r.Status(ctx, testSessionID, providerActor())
	if err != nil {
		t.Fatal(err)
	}
	if !asProvider.CallerReady || asProvider.OtherPartyReady {
		t.Errorf("provider view = %+v, want caller ready only", asProvider)
	}

	asRequester, err := r.Status(ctx, testSessionID, requesterActor())
	if err != nil {
		t.Fatal(err)
	}
	if asRequester.CallerReady || !asRequester.OtherPartyReady {
		t.Errorf("requester view = %+v, want other party ready only", asRequester)
	}
}

func TestStatus_ExpiredSession(t *testing.T) {
	tests := []struct {
		name   string
		status string
		now    time.Time
	}{
		{"cancelled", models.SessionCancelled, testNow},
		{"completed", models.SessionCompleted, testNow},
		{"in progress", models.SessionInProgress, testNow},
		{"window passed", models.SessionConfirmed, testNow.Add(3 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sessions, readiness, _ := newTestRendezvous()
			seedSession(sessions, tt.status)
			r.Now = func() time.Time { return tt.now }
			if _, err := readiness.SetFlag(context.Background(), testSessionID, models.RoleRequester, true, time.Hour); err != nil {
				t.Fatal(err)
			}

			status, err := r.Status(context.Background(), testSessionID, requesterActor())
			if err != nil {
				t.Fatalf("Status failed: %v", err)
			}
			want := models.ReadinessStatus{SessionExpired: true}
			if status != want {
				t.Errorf("status = %+v, want only SessionExpired", status)
			}
		})
	}
}

func TestStatus_UnsetIsVisibleToTheOtherParty(t *testing.T) {
	r, sessions, _, _ := newTestRendezvous()
	seedSession(sessions, models.SessionConfirmed)

	ctx := context.Background()
	if _, err := r.SetReady(ctx, testSessionID, providerActor(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SetReady(ctx, testSessionID, providerActor(), false); err != nil {
		t.Fatal(err)
	}

	status, err := r.Status(ctx, testSessionID, requesterActor())
	if err != nil {
		t.Fatal(err)
	}
	if status.OtherPartyReady {
		t.Error("requester still sees a flag the provider has withdrawn")
	}
}

func TestSetReady_ConcurrentPartiesBothRecorded(t *testing.T) {
	r, sessions, _, _ := newTestRendezvous()
	seedSession(sessions, models.SessionConfirmed)

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, actor := range []models.Party{requesterActor(), providerActor()} {
		wg.Add(1)
		go func(actor models.Party) {
			defer wg.Done()
			if _, err := r.SetReady(ctx, testSessionID, actor, true); err != nil {
				t.Errorf("SetReady(%s): %v", actor.Role, err)
			}
		}(actor)
	}
	wg.Wait()

	status, err := r.Status(ctx, testSessionID, requesterActor())
	if err != nil {
		t.Fatal(err)
	}
	if !status.BothReady {
		t.Errorf("both parties flagged ready concurrently, got %+v", status)
	}
}
