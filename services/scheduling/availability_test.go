package scheduling

import (
	"context"
	"reflect"
	"testing"
	"time"

	availabilityRepo "meetpoint/database/repository/availability"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/utils"
)

const (
	testProvider  = "prov-1"
	testRequester = "req-1"
	testDate      = "2026-09-16"
)

func testWeekday(t *testing.T, date string) int {
	t.Helper()
	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return int(day.Weekday())
}

func newTestEngine() (*AvailabilityEngine, *availabilityRepo.MemoryAvailabilityRepo, *sessionRepo.MemorySessionRepo) {
	rules := availabilityRepo.NewMemoryAvailabilityRepo()
	sessions := sessionRepo.NewMemorySessionRepo()
	engine := &AvailabilityEngine{Rules: rules, Sessions: sessions, MinFragmentMinutes: 15}
	return engine, rules, sessions
}

func seedRule(t *testing.T, rules *availabilityRepo.MemoryAvailabilityRepo, id string, weekday *int, dateStart, dateEnd string, start, end int, active bool) {
	t.Helper()
	err := rules.CreateRule(context.Background(), &models.AvailabilityRule{
		ID:         id,
		ProviderID: testProvider,
		Weekday:    weekday,
		DateStart:  dateStart,
		DateEnd:    dateEnd,
		Start:      start,
		End:        end,
		Active:     active,
	})
	if err != nil {
		t.Fatalf("seed rule: %v", err)
	}
}

func seedSession(t *testing.T, sessions *sessionRepo.MemorySessionRepo, id, requesterID, status string, start, end int) {
	t.Helper()
	day, _ := time.Parse(utils.DateLayout, testDate)
	sessions.Seed(models.Session{
		ID:          id,
		ProviderID:  testProvider,
		RequesterID: requesterID,
		Date:        testDate,
		Start:       start,
		End:         end,
		Duration:    end - start,
		Status:      status,
		StartAt:     day.Add(time.Duration(start) * time.Minute),
		EndAt:       day.Add(time.Duration(end) * time.Minute),
	})
}

func TestEffectiveFreeIntervals_SubtractionSplits(t *testing.T) {
	engine, rules, sessions := newTestEngine()
	wd := testWeekday(t, testDate)
	seedRule(t, rules, "r1", &wd, "", "", 540, 720, true) // 09:00-12:00
	seedSession(t, sessions, "s1", testRequester, models.SessionConfirmed, 600, 630)

	got, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("EffectiveFreeIntervals: %v", err)
	}
	want := []Interval{{540, 600}, {630, 720}} // 09:00-10:00, 10:30-12:00
	if !reflect.DeepEqual(got, want) {
		t.Errorf("free intervals = %v, want %v", got, want)
	}
}

func TestEffectiveFreeIntervals_OverlappingRulesNeverDoubleCount(t *testing.T) {
	engine, rules, _ := newTestEngine()
	// Two date-range rules covering the same morning.
	seedRule(t, rules, "r1", nil, testDate, testDate, 540, 660, true)
	seedRule(t, rules, "r2", nil, testDate, testDate, 600, 720, true)

	got, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("EffectiveFreeIntervals: %v", err)
	}
	if total := TotalMinutes(got); total > 720-540 {
		t.Errorf("free minutes = %d, exceeds the union span %d", total, 720-540)
	}
	want := []Interval{{540, 720}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("free intervals = %v, want union %v", got, want)
	}
}

func TestEffectiveFreeIntervals_StatusFiltering(t *testing.T) {
	tests := []struct {
		status   string
		occupies bool
	}{
		{models.SessionPending, false},
		{models.SessionCancelled, false},
		{models.SessionConfirmed, true},
		{models.SessionInProgress, true},
		{models.SessionCompleted, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			engine, rules, sessions := newTestEngine()
			wd := testWeekday(t, testDate)
			seedRule(t, rules, "r1", &wd, "", "", 540, 720, true)
			seedSession(t, sessions, "s1", testRequester, tt.status, 600, 630)

			got, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
			if err != nil {
				t.Fatalf("EffectiveFreeIntervals: %v", err)
			}
			full := reflect.DeepEqual(got, []Interval{{540, 720}})
			if tt.occupies && full {
				t.Errorf("%s session should occupy time, got full window %v", tt.status, got)
			}
			if !tt.occupies && !full {
				t.Errorf("%s session must not reduce free intervals, got %v", tt.status, got)
			}
		})
	}
}

func TestEffectiveFreeIntervals_NoRulesIsEmptyNotError(t *testing.T) {
	engine, _, _ := newTestEngine()

	got, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("expected nil error for provider without rules, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no intervals, got %v", got)
	}
}

func TestEffectiveFreeIntervals_InactiveRuleIgnored(t *testing.T) {
	engine, rules, _ := newTestEngine()
	wd := testWeekday(t, testDate)
	seedRule(t, rules, "r1", &wd, "", "", 540, 720, false)

	got, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("EffectiveFreeIntervals: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("inactive rule must contribute no free time, got %v", got)
	}
}

func TestEffectiveFreeIntervals_DropsShortSlivers(t *testing.T) {
	engine, rules, sessions := newTestEngine()
	wd := testWeekday(t, testDate)
	seedRule(t, rules, "r1", &wd, "", "", 540, 720, true)
	// Occupy all but a 10-minute sliver at the front.
	seedSession(t, sessions, "s1", testRequester, models.SessionConfirmed, 550, 720)

	got, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("EffectiveFreeIntervals: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("slivers below the minimum fragment must not be offered, got %v", got)
	}
}

func TestFreeWithinRules_KeepsRuleBoundaries(t *testing.T) {
	engine, rules, _ := newTestEngine()
	// Two touching rules that merge into one window for display, but must
	// stay separate for validation.
	seedRule(t, rules, "r1", nil, testDate, testDate, 540, 600, true)
	seedRule(t, rules, "r2", nil, testDate, testDate, 600, 660, true)

	merged, err := engine.EffectiveFreeIntervals(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("EffectiveFreeIntervals: %v", err)
	}
	if !reflect.DeepEqual(merged, []Interval{{540, 660}}) {
		t.Fatalf("display view should merge touching rules, got %v", merged)
	}

	perRule, err := engine.FreeWithinRules(context.Background(), testProvider, testDate)
	if err != nil {
		t.Fatalf("FreeWithinRules: %v", err)
	}
	candidate := Interval{570, 630} // straddles the rule boundary
	for _, iv := range perRule {
		if Contains(iv, candidate) {
			t.Errorf("candidate %v must not fit any unmerged rule window, but fits %v", candidate, iv)
		}
	}
}
