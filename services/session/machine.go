package session

import (
	"context"
	"fmt"
	"math"
	"time"

	readinessRepo "meetpoint/database/repository/readiness"
	sessionRepo "meetpoint/database/repository/session"
	"meetpoint/models"
	"meetpoint/services/ledger"
	"meetpoint/services/notification"

	"go.uber.org/zap"
)

// Lifecycle events accepted by Transition.
const (
	EventConfirm  = "confirm"
	EventReject   = "reject"
	EventCancel   = "cancel"
	EventBegin    = "begin"
	EventComplete = "complete"
)

// EventDispatcher enqueues fire-and-forget notifications for lifecycle
// transitions.
type EventDispatcher interface {
	Dispatch(ctx context.Context, sessionID, eventKind, partyID string, data map[string]string)
}

// TransitionInput carries the optional payload of a transition.
type TransitionInput struct {
	Rating *int   `json:"rating,omitempty"`
	Review string `json:"review,omitempty"`
}

// Machine is the authoritative session state machine. Status moves only
// forward; every write is a conditional update keyed on the current
// status, so concurrent transitions are mutually exclusive.
type Machine struct {
	Sessions   sessionRepo.Repository
	Readiness  readinessRepo.Store
	Ledger     ledger.Ledger
	Dispatcher EventDispatcher
	Logger     *zap.Logger

	PayoutRate float64
	BeginGrace time.Duration

	// Now is stubbed in tests.
	Now func() time.Time
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Transition applies one lifecycle event to a session on behalf of an
// actor. Guard failures return typed StateErrors; authorization failures
// return KindNotAuthorized.
func (m *Machine) Transition(ctx context.Context, sessionID string, actor models.Party, event string, input TransitionInput) (*models.Session, error) {
	s, err := m.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if err == sessionRepo.ErrNotFound {
			return nil, NewStateError(KindNotFound, "session %s not found", sessionID)
		}
		return nil, err
	}
	if s.Terminal() {
		return nil, NewStateError(KindAlreadyClosed, "session is already %s", s.Status)
	}

	switch event {
	case EventConfirm:
		return m.confirm(ctx, s, actor)
	case EventReject:
		return m.reject(ctx, s, actor)
	case EventCancel:
		return m.cancel(ctx, s, actor)
	case EventBegin:
		return m.begin(ctx, s, actor)
	case EventComplete:
		return m.complete(ctx, s, actor, input)
	default:
		return nil, NewStateError(KindUnknownEvent, "unknown transition event %q", event)
	}
}

func (m *Machine) confirm(ctx context.Context, s *models.Session, actor models.Party) (*models.Session, error) {
	if !m.actorIsProvider(actor, s) {
		return nil, NewStateError(KindNotAuthorized, "only the provider may confirm")
	}
	if s.Status != models.SessionPending {
		return nil, NewStateError(KindNotPending, "session is %s, not pending", s.Status)
	}
	if !m.now().Before(s.StartAt) {
		// The session is overdue; the expiry sweep owns it now.
		return nil, NewStateError(KindOutsideStartWindow, "session start time has passed")
	}

	matched, err := m.Sessions.ConditionalTransition(ctx, s.ID,
		[]string{models.SessionPending}, models.SessionConfirmed, nil)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, m.lostRace(ctx, s.ID)
	}
	s.Status = models.SessionConfirmed

	payout := math.Round(s.Price*m.PayoutRate*100) / 100
	if err := m.Ledger.Credit(ctx, s.ProviderID, payout, s.ID+":confirm"); err != nil {
		m.Logger.Error("provider credit failed after confirm",
			zap.String("sessionId", s.ID), zap.Error(err))
	}
	m.notifyBoth(ctx, s, notification.EventSessionConfirmed)
	return s, nil
}

func (m *Machine) reject(ctx context.Context, s *models.Session, actor models.Party) (*models.Session, error) {
	if !m.actorIsProvider(actor, s) {
		return nil, NewStateError(KindNotAuthorized, "only the provider may reject")
	}
	if s.Status != models.SessionPending {
		return nil, NewStateError(KindNotPending, "session is %s, not pending", s.Status)
	}
	if !m.now().Before(s.StartAt) {
		return nil, NewStateError(KindOutsideStartWindow, "session start time has passed")
	}

	matched, err := m.Sessions.ConditionalTransition(ctx, s.ID,
		[]string{models.SessionPending}, models.SessionCancelled,
		map[string]interface{}{"cancelReason": "rejected by provider"})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, m.lostRace(ctx, s.ID)
	}
	s.Status = models.SessionCancelled
	s.CancelReason = "rejected by provider"

	m.refund(ctx, s, "reject")
	m.notifyBoth(ctx, s, notification.EventSessionCancelled)
	m.discardReadiness(ctx, s.ID)
	return s, nil
}

func (m *Machine) cancel(ctx context.Context, s *models.Session, actor models.Party) (*models.Session, error) {
	if !m.actorIsPartyOrAdmin(actor, s) {
		return nil, NewStateError(KindNotAuthorized, "actor is not a party to this session")
	}
	if s.Status != models.SessionConfirmed {
		return nil, NewStateError(KindWrongStatus, "only confirmed sessions can be cancelled, session is %s", s.Status)
	}
	if !m.now().Before(s.EndAt) {
		return nil, NewStateError(KindTooLateToCancel, "session window has already ended")
	}

	reason := "cancelled by " + actor.Role
	matched, err := m.Sessions.ConditionalTransition(ctx, s.ID,
		[]string{models.SessionConfirmed}, models.SessionCancelled,
		map[string]interface{}{"cancelReason": reason})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, m.lostRace(ctx, s.ID)
	}
	s.Status = models.SessionCancelled
	s.CancelReason = reason

	// Full refund regardless of who cancels.
	m.refund(ctx, s, "cancel")
	m.notifyBoth(ctx, s, notification.EventSessionCancelled)
	m.discardReadiness(ctx, s.ID)
	return s, nil
}

func (m *Machine) begin(ctx context.Context, s *models.Session, actor models.Party) (*models.Session, error) {
	if !m.actorIsPartyOrAdmin(actor, s) {
		return nil, NewStateError(KindNotAuthorized, "actor is not a party to this session")
	}
	if s.Status != models.SessionConfirmed {
		return nil, NewStateError(KindWrongStatus, "only confirmed sessions can begin, session is %s", s.Status)
	}
	now := m.now()
	if now.Before(s.StartAt.Add(-m.BeginGrace)) || now.After(s.StartAt.Add(m.BeginGrace)) {
		return nil, NewStateError(KindOutsideStartWindow,
			"begin is only allowed within %s of the start time", m.BeginGrace)
	}

	matched, err := m.Sessions.ConditionalTransition(ctx, s.ID,
		[]string{models.SessionConfirmed}, models.SessionInProgress,
		map[string]interface{}{"actualStart": now})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, m.lostRace(ctx, s.ID)
	}
	s.Status = models.SessionInProgress
	s.ActualStart = &now

	// Readiness is meaningless once the session is live.
	m.discardReadiness(ctx, s.ID)
	return s, nil
}

func (m *Machine) complete(ctx context.Context, s *models.Session, actor models.Party, input TransitionInput) (*models.Session, error) {
	if !m.actorIsPartyOrAdmin(actor, s) {
		return nil, NewStateError(KindNotAuthorized, "actor is not a party to this session")
	}
	if s.Status != models.SessionInProgress {
		return nil, NewStateError(KindWrongStatus, "only in-progress sessions can complete, session is %s", s.Status)
	}

	now := m.now()
	set := map[string]interface{}{"actualEnd": now}
	if input.Rating != nil {
		set["rating"] = *input.Rating
	}
	if input.Review != "" {
		set["review"] = input.Review
	}
	matched, err := m.Sessions.ConditionalTransition(ctx, s.ID,
		[]string{models.SessionInProgress}, models.SessionCompleted, set)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, m.lostRace(ctx, s.ID)
	}
	s.Status = models.SessionCompleted
	s.ActualEnd = &now
	s.Rating = input.Rating
	s.Review = input.Review

	m.notifyBoth(ctx, s, notification.EventSessionCompleted)
	m.discardReadiness(ctx, s.ID)
	return s, nil
}

// lostRace re-reads a session after a conditional update missed and maps
// the current status to a precise guard error.
func (m *Machine) lostRace(ctx context.Context, sessionID string) error {
	s, err := m.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("transition lost a concurrent race and re-read failed: %w", err)
	}
	if s.Terminal() {
		return NewStateError(KindAlreadyClosed, "session is already %s", s.Status)
	}
	return NewStateError(KindWrongStatus, "session moved to %s concurrently", s.Status)
}

func (m *Machine) refund(ctx context.Context, s *models.Session, transitionKind string) {
	if err := m.Ledger.Refund(ctx, s.RequesterID, s.Price, s.ID+":"+transitionKind); err != nil {
		m.Logger.Error("requester refund failed",
			zap.String("sessionId", s.ID),
			zap.String("transition", transitionKind),
			zap.Error(err))
	}
}

func (m *Machine) notifyBoth(ctx context.Context, s *models.Session, eventKind string) {
	if m.Dispatcher == nil {
		return
	}
	data := map[string]string{
		"date":  s.Date,
		"start": models.ClockLabel(s.Start),
		"end":   models.ClockLabel(s.End),
	}
	m.Dispatcher.Dispatch(ctx, s.ID, eventKind, s.RequesterID, data)
	m.Dispatcher.Dispatch(ctx, s.ID, eventKind, s.ProviderID, data)
}

func (m *Machine) discardReadiness(ctx context.Context, sessionID string) {
	if m.Readiness == nil {
		return
	}
	if err := m.Readiness.Delete(ctx, sessionID); err != nil {
		m.Logger.Warn("failed to discard readiness state",
			zap.String("sessionId", sessionID), zap.Error(err))
	}
}

func (m *Machine) actorIsProvider(actor models.Party, s *models.Session) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleProvider && actor.ID == s.ProviderID
}

func (m *Machine) actorIsPartyOrAdmin(actor models.Party, s *models.Session) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleProvider:
		return actor.ID == s.ProviderID
	case models.RoleRequester:
		return actor.ID == s.RequesterID
	}
	return false
}
