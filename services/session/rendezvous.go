package session

import (
	"context"
	"time"

	readinessRepo "meetpoint/database/repository/readiness"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
)

// Rendezvous tracks each party's "I am ready" signal for a confirmed
// session and decides when both are simultaneously ready. Both-ready
// detection is server-authoritative: clients poll Status and must act on
// its answer, never on locally cached flags, because the other party may
// have unset their flag between two polls.
type Rendezvous struct {
	Sessions  sessionRepo.Repository
	Readiness readinessRepo.Store
	Machine   *Machine

	// ExtraTTL pads the readiness entry's TTL past the session end.
	ExtraTTL time.Duration

	// Now is stubbed in tests.
	Now func() time.Time
}

func (r *Rendezvous) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// SetReady idempotently records one party's readiness flag. A provider
// readying up on a still-pending session confirms it first
// (auto-confirm-on-ready), collapsing the two-step provider action into
// one.
func (r *Rendezvous) SetReady(ctx context.Context, sessionID string, actor models.Party, ready bool) (*models.ReadinessState, error) {
	s, err := r.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if err == sessionRepo.ErrNotFound {
			return nil, NewStateError(KindNotFound, "session %s not found", sessionID)
		}
		return nil, err
	}

	if !r.actorIsParty(actor, s) {
		return nil, NewStateError(KindNotAuthorized, "actor is not a party to this session")
	}
	if s.Terminal() || s.Status == models.SessionInProgress || r.now().After(s.EndAt) {
		return nil, NewStateError(KindRendezvousExpired, "the rendezvous window for this session has closed")
	}

	if s.Status == models.SessionPending && actor.Role == models.RoleProvider && ready {
		if _, err := r.Machine.Transition(ctx, sessionID, actor, EventConfirm, TransitionInput{}); err != nil {
			return nil, err
		}
	}

	ttl := s.EndAt.Sub(r.now()) + r.ExtraTTL
	return r.Readiness.SetFlag(ctx, sessionID, actor.Role, ready, ttl)
}

// Status is the polling read each party uses while waiting. SessionExpired
// flips once the window closes or the session leaves the rendezvous-
// eligible statuses; callers must stop polling and discard local state
// when it is set.
func (r *Rendezvous) Status(ctx context.Context, sessionID string, actor models.Party) (models.ReadinessStatus, error) {
	s, err := r.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if err == sessionRepo.ErrNotFound {
			return models.ReadinessStatus{}, NewStateError(KindNotFound, "session %s not found", sessionID)
		}
		return models.ReadinessStatus{}, err
	}
	if !r.actorIsParty(actor, s) {
		return models.ReadinessStatus{}, NewStateError(KindNotAuthorized, "actor is not a party to this session")
	}

	eligible := s.Status == models.SessionPending || s.Status == models.SessionConfirmed
	if !eligible || r.now().After(s.EndAt) {
		return models.ReadinessStatus{SessionExpired: true}, nil
	}

	state, err := r.Readiness.Get(ctx, sessionID)
	if err != nil {
		return models.ReadinessStatus{}, err
	}

	var caller, other bool
	if actor.Role == models.RoleProvider {
		caller, other = state.ProviderReady, state.RequesterReady
	} else {
		caller, other = state.RequesterReady, state.ProviderReady
	}
	return models.ReadinessStatus{
		CallerReady:     caller,
		OtherPartyReady: other,
		BothReady:       caller && other && s.Status == models.SessionConfirmed,
	}, nil
}

func (r *Rendezvous) actorIsParty(actor models.Party, s *models.Session) bool {
	switch actor.Role {
	case models.RoleProvider:
		return actor.ID == s.ProviderID
	case models.RoleRequester:
		return actor.ID == s.RequesterID
	}
	return false
}
