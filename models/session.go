package models

import "time"

// Session lifecycle statuses. Transitions only move forward:
// pending -> confirmed -> in_progress -> completed, with pending/confirmed
// also able to reach cancelled (explicit action or expiry). Terminal
// statuses are immutable.
const (
	SessionPending    = "pending"
	SessionConfirmed  = "confirmed"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
)

// OccupyingStatuses are the statuses that consume provider time. A pending
// session does not reserve its slot; only a confirmed one does.
var OccupyingStatuses = []string{SessionConfirmed, SessionInProgress, SessionCompleted}

// ActiveStatuses are the statuses that count against the duplicate-booking
// check for a requester+provider pair.
var ActiveStatuses = []string{SessionPending, SessionConfirmed, SessionInProgress}

// Session represents one booked engagement between a requester and a
// provider. Never deleted; terminal records are kept as history.
type Session struct {
	ID          string  `bson:"id" json:"id"`
	ProviderID  string  `bson:"providerId" json:"providerId"`
	RequesterID string  `bson:"requesterId" json:"requesterId"`
	Date        string  `bson:"date" json:"date"`         // "2006-01-02"
	Start       int     `bson:"start" json:"start"`       // minutes from midnight
	End         int     `bson:"end" json:"end"`           // Start + Duration
	Duration    int     `bson:"duration" json:"duration"` // minutes
	Price       float64 `bson:"price" json:"price"`
	Status      string  `bson:"status" json:"status"`

	// Absolute instants, denormalized for time-window queries (expiry
	// sweep, upcoming-session lookups).
	StartAt time.Time `bson:"startAt" json:"startAt"`
	EndAt   time.Time `bson:"endAt" json:"endAt"`

	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	ActualStart  *time.Time `bson:"actualStart,omitempty" json:"actualStart,omitempty"`
	ActualEnd    *time.Time `bson:"actualEnd,omitempty" json:"actualEnd,omitempty"`
	CancelReason string     `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	Rating       *int       `bson:"rating,omitempty" json:"rating,omitempty"`
	Review       string     `bson:"review,omitempty" json:"review,omitempty"`
}

// Terminal reports whether the session has reached an immutable status.
func (s Session) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionCancelled
}

// StatusesContain reports whether status appears in the given set.
func StatusesContain(set []string, status string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
