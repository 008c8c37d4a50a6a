package readinessRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meetpoint/models"
)

// MemoryReadinessStore is an in-memory Store used by tests and local
// development. TTLs are recorded but only enforced lazily on reads.
type MemoryReadinessStore struct {
	mu       sync.Mutex
	states   map[string]*models.ReadinessState
	expires  map[string]time.Time
	markOnce map[string]time.Time
}

func NewMemoryReadinessStore() *MemoryReadinessStore {
	return &MemoryReadinessStore{
		states:   make(map[string]*models.ReadinessState),
		expires:  make(map[string]time.Time),
		markOnce: make(map[string]time.Time),
	}
}

func (s *MemoryReadinessStore) Get(ctx context.Context, sessionID string) (*models.ReadinessState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.expires[sessionID]; ok && time.Now().After(exp) {
		delete(s.states, sessionID)
		delete(s.expires, sessionID)
	}
	state, ok := s.states[sessionID]
	if !ok {
		return &models.ReadinessState{SessionID: sessionID}, nil
	}
	copied := *state
	return &copied, nil
}

// SetFlag reads, mutates and stores the state under one held lock so that
// concurrent writes from the two parties never erase each other's flag.
func (s *MemoryReadinessStore) SetFlag(ctx context.Context, sessionID, role string, ready bool, ttl time.Duration) (*models.ReadinessState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.expires[sessionID]; ok && time.Now().After(exp) {
		delete(s.states, sessionID)
		delete(s.expires, sessionID)
	}
	state, ok := s.states[sessionID]
	if !ok {
		state = &models.ReadinessState{SessionID: sessionID}
		s.states[sessionID] = state
	}

	now := time.Now().UTC()
	switch role {
	case models.RoleRequester:
		state.RequesterReady = ready
		if ready {
			state.RequesterReadyAt = &now
		} else {
			state.RequesterReadyAt = nil
		}
	case models.RoleProvider:
		state.ProviderReady = ready
		if ready {
			state.ProviderReadyAt = &now
		} else {
			state.ProviderReadyAt = nil
		}
	default:
		return nil, fmt.Errorf("unknown party role %q", role)
	}

	s.expires[sessionID] = time.Now().Add(ttl)
	copied := *state
	return &copied, nil
}

func (s *MemoryReadinessStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	delete(s.expires, sessionID)
	return nil
}

func (s *MemoryReadinessStore) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.markOnce[key]; ok && time.Now().Before(exp) {
		return false, nil
	}
	s.markOnce[key] = time.Now().Add(ttl)
	return true, nil
}
