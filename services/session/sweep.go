package session

import (
	"context"

	"meetpoint/models"
	"meetpoint/services/notification"

	"go.uber.org/zap"
)

// SweepExpired cancels every pending session whose start time has passed
// without a provider response, refunding the requester. An external
// scheduler calls this periodically; the per-session conditional update
// makes the sweep idempotent and safe to run concurrently from multiple
// workers, and the ledger idempotency key guarantees at most one refund
// even when two sweeps race. Individual failures are logged and skipped so
// one bad record never blocks the rest of the sweep. Returns the number of
// sessions expired by this call.
func (m *Machine) SweepExpired(ctx context.Context) (int, error) {
	due, err := m.Sessions.ListDuePending(ctx, m.now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		s := due[i]
		matched, err := m.Sessions.ConditionalTransition(ctx, s.ID,
			[]string{models.SessionPending}, models.SessionCancelled,
			map[string]interface{}{"cancelReason": "expired: provider did not respond"})
		if err != nil {
			m.Logger.Error("sweep: failed to expire session",
				zap.String("sessionId", s.ID), zap.Error(err))
			continue
		}
		if !matched {
			// Another worker or an explicit transition got there first.
			continue
		}
		expired++

		s.Status = models.SessionCancelled
		m.refund(ctx, &s, "expire")
		m.notifyBoth(ctx, &s, notification.EventSessionCancelled)
		m.discardReadiness(ctx, s.ID)
	}
	return expired, nil
}
