package availabilityRepo

import (
	"context"
	"sync"

	"meetpoint/models"
)

// MemoryAvailabilityRepo is an in-memory Repository used by tests and
// local development.
type MemoryAvailabilityRepo struct {
	mu    sync.Mutex
	rules map[string]*models.AvailabilityRule
}

func NewMemoryAvailabilityRepo() *MemoryAvailabilityRepo {
	return &MemoryAvailabilityRepo{rules: make(map[string]*models.AvailabilityRule)}
}

func (r *MemoryAvailabilityRepo) CreateRule(ctx context.Context, rule *models.AvailabilityRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *rule
	r.rules[rule.ID] = &copied
	return nil
}

func (r *MemoryAvailabilityRepo) GetRulesByProvider(ctx context.Context, providerID string) ([]models.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AvailabilityRule
	for _, rule := range r.rules {
		if rule.ProviderID == providerID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *MemoryAvailabilityRepo) GetActiveRulesForDate(ctx context.Context, providerID, date string, weekday int) ([]models.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AvailabilityRule
	for _, rule := range r.rules {
		if rule.ProviderID != providerID || !rule.Active {
			continue
		}
		if rule.MatchesDate(date) {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *MemoryAvailabilityRepo) SetRuleActive(ctx context.Context, ruleID, providerID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[ruleID]
	if !ok || rule.ProviderID != providerID {
		return ErrRuleNotFound
	}
	rule.Active = active
	return nil
}
