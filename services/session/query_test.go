package session

import (
	"context"
	"testing"
	"time"

	availabilityRepo "meetpoint/database/repository/availability"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/services/scheduling"
)

func newTestQueryService() (*QueryService, *availabilityRepo.MemoryAvailabilityRepo, *sessionRepo.MemorySessionRepo) {
	rules := availabilityRepo.NewMemoryAvailabilityRepo()
	sessions := sessionRepo.NewMemorySessionRepo()
	q := &QueryService{
		Availability: &scheduling.AvailabilityEngine{
			Rules:              rules,
			Sessions:           sessions,
			MinFragmentMinutes: 15,
		},
		Sessions:        sessions,
		BeginGrace:      5 * time.Minute,
		UpcomingHorizon: 48 * time.Hour,
		Now:             func() time.Time { return testNow },
	}
	return q, rules, sessions
}

func TestFreeIntervalsForDisplay_Labels(t *testing.T) {
	q, rules, sessions := newTestQueryService()
	ctx := context.Background()

	// 2026-09-16 is a Wednesday.
	wd := 3
	if err := rules.CreateRule(ctx, &models.AvailabilityRule{
		ID: "r1", ProviderID: testProvider, Weekday: &wd, Start: 540, End: 720, Active: true,
	}); err != nil {
		t.Fatal(err)
	}
	seedSessionAt(sessions, "booked", models.SessionConfirmed,
		time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC))

	got, err := q.FreeIntervalsForDisplay(ctx, testProvider, "2026-09-16")
	if err != nil {
		t.Fatalf("FreeIntervalsForDisplay failed: %v", err)
	}

	want := []models.AvailableInterval{
		{Start: 540, End: 600, Label: "09:00 - 10:00"},
		{Start: 630, End: 720, Label: "10:30 - 12:00"},
	}
	if len(got) != len(want) {
		t.Fatalf("intervals = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFreeIntervalsForDisplay_NoRules(t *testing.T) {
	q, _, _ := newTestQueryService()
	got, err := q.FreeIntervalsForDisplay(context.Background(), testProvider, "2026-09-16")
	if err != nil {
		t.Fatalf("expected empty result, got error %v", err)
	}
	if len(got) != 0 {
		t.Errorf("intervals = %+v, want none", got)
	}
}

func TestSessionsForParty_FiltersAndPaginates(t *testing.T) {
	q, _, sessions := newTestQueryService()
	ctx := context.Background()

	for i := 0; i < DefaultPageSize+3; i++ {
		seedSessionAt(sessions, "s-"+string(rune('a'+i)), models.SessionCompleted,
			testNow.Add(time.Duration(i)*time.Hour))
	}
	seedSessionAt(sessions, "other-status", models.SessionPending, testNow)
	sessions.Seed(models.Session{
		ID: "other-party", ProviderID: "prov-9", RequesterID: "req-9",
		Status: models.SessionCompleted, StartAt: testNow,
	})

	page1, err := q.SessionsForParty(ctx, testProvider, models.SessionCompleted, 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1) != DefaultPageSize {
		t.Errorf("page 1 size = %d, want %d", len(page1), DefaultPageSize)
	}
	// Newest first.
	for i := 1; i < len(page1); i++ {
		if page1[i].StartAt.After(page1[i-1].StartAt) {
			t.Fatalf("page 1 not sorted newest first at index %d", i)
		}
	}

	page2, err := q.SessionsForParty(ctx, testProvider, models.SessionCompleted, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 3 {
		t.Errorf("page 2 size = %d, want 3", len(page2))
	}

	empty, err := q.SessionsForParty(ctx, testProvider, models.SessionCompleted, 3)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("page 3 size = %d, want 0", len(empty))
	}
}

func TestUpcomingRendezvous_Window(t *testing.T) {
	q, _, sessions := newTestQueryService()
	ctx := context.Background()

	seedSessionAt(sessions, "starting-now", models.SessionConfirmed, testNow.Add(-2*time.Minute))
	seedSessionAt(sessions, "later-today", models.SessionPending, testNow.Add(4*time.Hour))
	seedSessionAt(sessions, "too-old", models.SessionConfirmed, testNow.Add(-time.Hour))
	seedSessionAt(sessions, "too-far", models.SessionConfirmed, testNow.Add(72*time.Hour))
	seedSessionAt(sessions, "already-done", models.SessionCompleted, testNow.Add(4*time.Hour))

	got, err := q.UpcomingRendezvous(ctx, testRequester)
	if err != nil {
		t.Fatalf("UpcomingRendezvous failed: %v", err)
	}

	want := []string{"starting-now", "later-today"}
	if len(got) != len(want) {
		t.Fatalf("sessions = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("session[%d] = %s, want %s (soonest first)", i, got[i].ID, id)
		}
	}
}
