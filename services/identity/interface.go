package identity

import (
	"context"

	"meetpoint/models"
)

// Resolver is the slice of the user directory the booking engine consumes.
// Token verification and profile management live in the directory service;
// the engine only asks who a caller is and whether a provider may accept
// bookings.
type Resolver interface {
	// ResolveParty maps a bearer credential to the internal party record.
	ResolveParty(ctx context.Context, token string) (models.Party, error)
	// ProviderByID retrieves the provider's eligibility status and rate.
	ProviderByID(ctx context.Context, providerID string) (models.ProviderProfile, error)
}
