package sessionRepo

import (
	"context"
	"time"

	"meetpoint/models"
)

// Repository defines data access for session records. Sessions are never
// deleted; status moves forward only, through conditional updates.
type Repository interface {
	// GetByID retrieves a session by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Session, error)
	// CreateTransactionally inserts a pending session after re-checking,
	// inside the same transaction, that no occupying session overlaps the
	// window and no active session exists for the same requester+provider
	// pair over the window. Returns ErrSlotConflict or ErrPairConflict when
	// a concurrent booking won the slot.
	CreateTransactionally(ctx context.Context, session *models.Session) error
	// ListByProviderAndDate retrieves a provider's sessions on a date,
	// filtered to the given statuses.
	ListByProviderAndDate(ctx context.Context, providerID, date string, statuses []string) ([]models.Session, error)
	// ListByPairAndDate retrieves sessions between one requester and one
	// provider on a date, filtered to the given statuses.
	ListByPairAndDate(ctx context.Context, requesterID, providerID, date string, statuses []string) ([]models.Session, error)
	// ConditionalTransition atomically moves a session from one of the
	// given statuses to the target status, applying the extra field
	// updates. Reports whether the update matched; a false return means
	// the session was no longer in an eligible status.
	ConditionalTransition(ctx context.Context, id string, from []string, to string, set map[string]interface{}) (bool, error)
	// ListDuePending retrieves pending sessions whose start time has
	// passed, for the expiry sweep.
	ListDuePending(ctx context.Context, now time.Time) ([]models.Session, error)
	// ListByParty retrieves sessions where the party is requester or
	// provider, optionally filtered by status, newest first, paginated.
	ListByParty(ctx context.Context, partyID, status string, page, perPage int) ([]models.Session, error)
	// ListUpcomingForParty retrieves the party's pending or confirmed
	// sessions starting inside [from, to].
	ListUpcomingForParty(ctx context.Context, partyID string, from, to time.Time) ([]models.Session, error)
}
