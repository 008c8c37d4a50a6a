package scheduling

import (
	"context"
	"fmt"
	"time"

	availabilityRepo "meetpoint/database/repository/availability"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/utils"
)

// AvailabilityEngine computes a provider's effective free time on a date:
// declared rule windows minus windows consumed by occupying sessions.
type AvailabilityEngine struct {
	Rules    availabilityRepo.Repository
	Sessions sessionRepo.Repository
	// MinFragmentMinutes drops merged fragments too short to book.
	MinFragmentMinutes int
}

// RuleIntervalsForDate returns the unmerged window of each active rule
// matching the date. The booking validator checks containment against
// these, never against the merged view, so a booking can't straddle a gap
// two rules only appear to bridge.
func (e *AvailabilityEngine) RuleIntervalsForDate(ctx context.Context, providerID, date string) ([]Interval, error) {
	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	rules, err := e.Rules.GetActiveRulesForDate(ctx, providerID, date, int(day.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}

	var intervals []Interval
	for _, rule := range rules {
		// The weekday index match from the store is necessary but not
		// sufficient for date-range rules; re-check in full.
		if !rule.MatchesDate(date) {
			continue
		}
		intervals = append(intervals, Interval{Start: rule.Start, End: rule.End})
	}
	return intervals, nil
}

// OccupiedIntervals returns the windows consumed by the provider's
// sessions on the date. Only confirmed, in-progress and completed sessions
// occupy time; pending, cancelled and expired ones never do.
func (e *AvailabilityEngine) OccupiedIntervals(ctx context.Context, providerID, date string) ([]Interval, error) {
	sessions, err := e.Sessions.ListByProviderAndDate(ctx, providerID, date, models.OccupyingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occupying sessions: %w", err)
	}

	var busy []Interval
	for _, s := range sessions {
		busy = append(busy, Interval{Start: s.Start, End: s.End})
	}
	return busy, nil
}

// EffectiveFreeIntervals returns the provider's free time on a date.
// Overlapping rules are unioned before subtraction so double-declared time
// is never reported twice. A provider with no rules gets an empty list,
// not an error.
func (e *AvailabilityEngine) EffectiveFreeIntervals(ctx context.Context, providerID, date string) ([]Interval, error) {
	declared, err := e.RuleIntervalsForDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if len(declared) == 0 {
		return nil, nil
	}

	busy, err := e.OccupiedIntervals(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	free := SubtractAll(MergeTouchingOrOverlapping(declared, e.MinFragmentMinutes), busy)

	// Subtraction can leave slivers below the bookable minimum.
	var out []Interval
	for _, iv := range free {
		if iv.End-iv.Start >= e.MinFragmentMinutes {
			out = append(out, iv)
		}
	}
	return out, nil
}

// FreeWithinRules returns, per unmerged rule window, the fragments left
// after subtracting occupied time. Validation input.
func (e *AvailabilityEngine) FreeWithinRules(ctx context.Context, providerID, date string) ([]Interval, error) {
	declared, err := e.RuleIntervalsForDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if len(declared) == 0 {
		return nil, nil
	}

	busy, err := e.OccupiedIntervals(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	var out []Interval
	for _, rule := range declared {
		out = append(out, SubtractAll([]Interval{rule}, busy)...)
	}
	return out, nil
}
