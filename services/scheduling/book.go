package scheduling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/services/identity"
	"meetpoint/services/ledger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingEngine validates candidate slots and creates pending sessions.
type BookingEngine struct {
	Validator *Validator
	Sessions  sessionRepo.Repository
	Identity  identity.Resolver
	Ledger    ledger.Ledger
	Logger    *zap.Logger

	DefaultHourlyRate float64
}

// Book runs the full acceptance path: provider eligibility, slot
// validation, transactional insert, and the requester debit. On success
// the returned session is in pending status.
func (b *BookingEngine) Book(ctx context.Context, req BookingRequest) (*models.Session, error) {
	profile, err := b.Identity.ProviderByID(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider %s: %w", req.ProviderID, err)
	}
	if profile.Status != models.ProviderApproved {
		return nil, NewBookingError(KindProviderIneligible,
			"provider is not accepting bookings")
	}

	if err := b.Validator.Validate(ctx, req); err != nil {
		return nil, err
	}

	rate := profile.HourlyRate
	if rate <= 0 {
		rate = b.DefaultHourlyRate
	}
	price := math.Round(rate*float64(req.Duration)/60.0*100) / 100

	startAt, err := req.StartAt()
	if err != nil {
		return nil, NewBookingError(KindSlotUnavailable, "invalid date %q", req.Date)
	}

	session := &models.Session{
		ID:          uuid.New().String(),
		ProviderID:  req.ProviderID,
		RequesterID: req.RequesterID,
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End(),
		Duration:    req.Duration,
		Price:       price,
		Status:      models.SessionPending,
		StartAt:     startAt,
		EndAt:       startAt.Add(time.Duration(req.Duration) * time.Minute),
		CreatedAt:   time.Now().UTC(),
	}

	// The transactional insert re-checks conflicts against committed data;
	// the loser of a concurrent race lands here, not as a double booking.
	if err := b.Sessions.CreateTransactionally(ctx, session); err != nil {
		if errors.Is(err, sessionRepo.ErrSlotConflict) {
			return nil, NewBookingError(KindSlotConflict,
				"the slot was taken by a concurrent booking; refresh availability and retry")
		}
		if errors.Is(err, sessionRepo.ErrPairConflict) {
			return nil, NewBookingError(KindDuplicateBooking,
				"you already have a session with this provider over this window")
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Debit the requester. The ledger is idempotent per key, so a retried
	// create can never charge twice.
	idemKey := session.ID + ":create"
	if err := b.Ledger.Debit(ctx, session.RequesterID, session.Price, idemKey); err != nil {
		// Undo the reservation rather than holding an unpaid slot.
		matched, cancelErr := b.Sessions.ConditionalTransition(ctx, session.ID,
			[]string{models.SessionPending}, models.SessionCancelled,
			map[string]interface{}{"cancelReason": "payment failed"})
		if cancelErr != nil || !matched {
			b.Logger.Error("failed to cancel session after debit failure",
				zap.String("sessionId", session.ID), zap.Error(cancelErr))
		}
		return nil, fmt.Errorf("failed to debit requester: %w", err)
	}

	return session, nil
}
