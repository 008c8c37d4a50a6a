package availabilityRepo

import (
	"context"

	"meetpoint/models"
)

// Repository defines data access for provider availability rules.
type Repository interface {
	// CreateRule persists a new availability rule.
	CreateRule(ctx context.Context, rule *models.AvailabilityRule) error
	// GetRulesByProvider retrieves every rule owned by a provider.
	GetRulesByProvider(ctx context.Context, providerID string) ([]models.AvailabilityRule, error)
	// GetActiveRulesForDate retrieves the active rules applying on a date:
	// recurring rules matching the date's weekday plus date-range rules
	// covering the date (inclusive on both ends).
	GetActiveRulesForDate(ctx context.Context, providerID, date string, weekday int) ([]models.AvailabilityRule, error)
	// SetRuleActive soft-enables or soft-disables a rule. Only the owning
	// provider may flip the flag.
	SetRuleActive(ctx context.Context, ruleID, providerID string, active bool) error
}
