package readinessRepo

import (
	"context"
	"time"

	"meetpoint/models"
)

// Store holds the ephemeral per-session readiness records. Entries carry a
// TTL aligned to the session's rendezvous window and are discarded once
// the session starts or closes.
type Store interface {
	// Get retrieves the readiness state for a session. A missing entry is
	// not an error: it returns a zero-value state.
	Get(ctx context.Context, sessionID string) (*models.ReadinessState, error)
	// SetFlag records one party's readiness flag, creating the entry with
	// the given TTL when absent. Safe to call repeatedly with the same
	// value.
	SetFlag(ctx context.Context, sessionID, role string, ready bool, ttl time.Duration) (*models.ReadinessState, error)
	// Delete discards the readiness entry.
	Delete(ctx context.Context, sessionID string) error
	// MarkOnce records an idempotency key, reporting true only on first
	// use within the TTL.
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
