package session

import (
	"context"
	"time"

	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/services/scheduling"
)

// DefaultPageSize bounds party session listings.
const DefaultPageSize = 20

// QueryService is the read-only projection layer for external consumers:
// calendar views, session lists, and the rendezvous-eligible window. It
// composes the availability engine and the session store and adds no
// validation logic of its own.
type QueryService struct {
	Availability *scheduling.AvailabilityEngine
	Sessions     sessionRepo.Repository

	// BeginGrace and UpcomingHorizon bound the rendezvous-eligible window.
	BeginGrace      time.Duration
	UpcomingHorizon time.Duration

	Now func() time.Time
}

func (q *QueryService) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now().UTC()
}

// FreeIntervalsForDisplay returns the provider's merged free intervals on
// a date, labelled for calendar rendering. Display only; booking
// validation never reads this view.
func (q *QueryService) FreeIntervalsForDisplay(ctx context.Context, providerID, date string) ([]models.AvailableInterval, error) {
	free, err := q.Availability.EffectiveFreeIntervals(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	out := make([]models.AvailableInterval, 0, len(free))
	for _, iv := range free {
		out = append(out, models.AvailableInterval{
			Start: iv.Start,
			End:   iv.End,
			Label: models.ClockLabel(iv.Start) + " - " + models.ClockLabel(iv.End),
		})
	}
	return out, nil
}

// SessionsForParty lists a party's sessions, optionally filtered by
// status, newest first.
func (q *QueryService) SessionsForParty(ctx context.Context, partyID, status string, page int) ([]models.Session, error) {
	return q.Sessions.ListByParty(ctx, partyID, status, page, DefaultPageSize)
}

// UpcomingRendezvous lists the party's pending or confirmed sessions whose
// start falls inside the rendezvous-eligible window: from just before now
// (the begin grace) out to the polling horizon.
func (q *QueryService) UpcomingRendezvous(ctx context.Context, partyID string) ([]models.Session, error) {
	now := q.now()
	return q.Sessions.ListUpcomingForParty(ctx, partyID, now.Add(-q.BeginGrace), now.Add(q.UpcomingHorizon))
}
