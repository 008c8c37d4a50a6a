package scheduling

import (
	"context"
	"fmt"
	"time"

	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/utils"
)

// BookingRequest is a candidate slot submitted by a requester.
type BookingRequest struct {
	ProviderID  string `json:"providerId" binding:"required"`
	RequesterID string `json:"requesterId"`
	Date        string `json:"date" binding:"required"`     // "2006-01-02"
	Start       int    `json:"start"`                       // minutes from midnight
	Duration    int    `json:"duration" binding:"required"` // minutes
}

// End returns the candidate end minute.
func (r BookingRequest) End() int {
	return r.Start + r.Duration
}

// StartAt returns the candidate start as an absolute UTC instant.
func (r BookingRequest) StartAt() (time.Time, error) {
	day, err := time.Parse(utils.DateLayout, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	return day.Add(time.Duration(r.Start) * time.Minute), nil
}

// Validator applies the booking acceptance rules in order; the first
// failure wins and is reported with its typed kind.
type Validator struct {
	Availability *AvailabilityEngine
	Sessions     sessionRepo.Repository

	QuantumMinutes     int
	MaxDurationMinutes int
	HorizonDays        int

	// Now is stubbed in tests.
	Now func() time.Time
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now().UTC()
}

// Validate decides accept/reject for a candidate slot. A nil return is an
// acceptance; any non-nil error is a *BookingError carrying the rejection
// kind.
func (v *Validator) Validate(ctx context.Context, req BookingRequest) error {
	// 1. Duration must be a positive multiple of the quantum, capped.
	if req.Duration <= 0 || req.Duration%v.QuantumMinutes != 0 {
		return NewBookingError(KindInvalidDuration,
			"duration must be a positive multiple of %d minutes", v.QuantumMinutes)
	}
	if req.Duration > v.MaxDurationMinutes {
		return NewBookingError(KindInvalidDuration,
			"duration exceeds the maximum of %d minutes", v.MaxDurationMinutes)
	}

	// 2. The candidate must fit inside a single rule window net of
	// occupied time. Merged/display intervals are deliberately not
	// consulted here.
	candidate := Interval{Start: req.Start, End: req.End()}
	free, err := v.Availability.FreeWithinRules(ctx, req.ProviderID, req.Date)
	if err != nil {
		return err
	}
	contained := false
	for _, iv := range free {
		if Contains(iv, candidate) {
			contained = true
			break
		}
	}
	if !contained {
		return NewBookingError(KindSlotUnavailable,
			"requested window %s-%s is not available on %s",
			models.ClockLabel(candidate.Start), models.ClockLabel(candidate.End), req.Date)
	}

	// 3. No overlapping active session for this requester+provider pair.
	// The check is per pair, not global: another requester's pending
	// session does not reserve the slot.
	pairSessions, err := v.Sessions.ListByPairAndDate(ctx, req.RequesterID, req.ProviderID, req.Date, models.ActiveStatuses)
	if err != nil {
		return fmt.Errorf("failed to check duplicate bookings: %w", err)
	}
	for _, s := range pairSessions {
		if Overlaps(candidate, Interval{Start: s.Start, End: s.End}) {
			return NewBookingError(KindDuplicateBooking,
				"you already have a session with this provider overlapping %s-%s",
				models.ClockLabel(s.Start), models.ClockLabel(s.End))
		}
	}

	// 4. Start strictly in the future, within the booking horizon.
	startAt, err := req.StartAt()
	if err != nil {
		return NewBookingError(KindSlotUnavailable, "invalid date %q", req.Date)
	}
	if !startAt.After(v.now()) {
		return NewBookingError(KindPastStartTime, "session start must be in the future")
	}
	if v.HorizonDays > 0 && startAt.After(v.now().AddDate(0, 0, v.HorizonDays)) {
		return NewBookingError(KindSlotUnavailable,
			"sessions can be booked at most %d days ahead", v.HorizonDays)
	}

	return nil
}
