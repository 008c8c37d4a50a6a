package ledger

import "context"

// Ledger is the payment collaborator. Every call is idempotent per
// idemKey, so a retried transition never double-charges or double-refunds.
// The convention for keys is "<sessionID>:<transitionKind>".
type Ledger interface {
	// Debit charges the requester when a session is created.
	Debit(ctx context.Context, partyID string, amount float64, idemKey string) error
	// Credit pays the provider's earnings ledger on confirmation.
	Credit(ctx context.Context, partyID string, amount float64, idemKey string) error
	// Refund returns the full price to the requester on rejection, expiry
	// or cancellation.
	Refund(ctx context.Context, partyID string, amount float64, idemKey string) error
}
