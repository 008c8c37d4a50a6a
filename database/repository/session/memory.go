package sessionRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"meetpoint/models"
)

// MemorySessionRepo is an in-memory Repository with the same conditional
// update semantics as the Mongo implementation. Used by tests and local
// development.
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]*models.Session)}
}

// Seed inserts a session without conflict checks.
func (r *MemorySessionRepo) Seed(s models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := s
	r.sessions[s.ID] = &copied
}

func (r *MemorySessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *MemorySessionRepo) CreateTransactionally(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.ProviderID != session.ProviderID || s.Date != session.Date {
			continue
		}
		overlap := s.Start < session.End && session.Start < s.End
		if !overlap {
			continue
		}
		if models.StatusesContain(models.OccupyingStatuses, s.Status) {
			return ErrSlotConflict
		}
		if s.RequesterID == session.RequesterID && models.StatusesContain(models.ActiveStatuses, s.Status) {
			return ErrPairConflict
		}
	}

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *MemorySessionRepo) ListByProviderAndDate(ctx context.Context, providerID, date string, statuses []string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.ProviderID == providerID && s.Date == date && models.StatusesContain(statuses, s.Status) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *MemorySessionRepo) ListByPairAndDate(ctx context.Context, requesterID, providerID, date string, statuses []string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.RequesterID == requesterID && s.ProviderID == providerID && s.Date == date && models.StatusesContain(statuses, s.Status) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *MemorySessionRepo) ConditionalTransition(ctx context.Context, id string, from []string, to string, set map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || !models.StatusesContain(from, s.Status) {
		return false, nil
	}

	s.Status = to
	for k, v := range set {
		switch k {
		case "cancelReason":
			s.CancelReason, _ = v.(string)
		case "actualStart":
			if t, ok := v.(time.Time); ok {
				s.ActualStart = &t
			}
		case "actualEnd":
			if t, ok := v.(time.Time); ok {
				s.ActualEnd = &t
			}
		case "rating":
			if n, ok := v.(int); ok {
				s.Rating = &n
			}
		case "review":
			s.Review, _ = v.(string)
		}
	}
	return true, nil
}

func (r *MemorySessionRepo) ListDuePending(ctx context.Context, now time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.Status == models.SessionPending && !s.StartAt.After(now) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *MemorySessionRepo) ListByParty(ctx context.Context, partyID, status string, page, perPage int) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.RequesterID != partyID && s.ProviderID != partyID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.After(out[j].StartAt) })

	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(out) {
		return nil, nil
	}
	end := start + perPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *MemorySessionRepo) ListUpcomingForParty(ctx context.Context, partyID string, from, to time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.RequesterID != partyID && s.ProviderID != partyID {
			continue
		}
		if s.Status != models.SessionPending && s.Status != models.SessionConfirmed {
			continue
		}
		if s.StartAt.Before(from) || s.StartAt.After(to) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}
