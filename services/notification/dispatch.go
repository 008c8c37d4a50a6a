package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meetpoint/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotifyEvent is the asynq task type for lifecycle notifications.
const TypeNotifyEvent = "notify:event"

// EventPayload is the task body carried through the queue.
type EventPayload struct {
	PartyID   string            `json:"partyId"`
	SessionID string            `json:"sessionId"`
	EventKind string            `json:"eventKind"`
	Data      map[string]string `json:"data,omitempty"`
}

// DedupeMarker records notification idempotency keys so a retried
// transition enqueues each (session, transition, party) event at most
// once.
type DedupeMarker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Dispatcher enqueues notification tasks. Enqueue failures are logged and
// swallowed: delivery is best effort and must never fail a transition.
type Dispatcher struct {
	Client *asynq.Client
	Marker DedupeMarker
	Logger *zap.Logger
}

// Dispatch enqueues a notification for one party, deduplicated per
// (sessionID, eventKind, partyID).
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, eventKind, partyID string, data map[string]string) {
	dedupeKey := fmt.Sprintf("%s%s:%s:%s", utils.NotifyDedupeKeyPrefix, sessionID, eventKind, partyID)
	first, err := d.Marker.MarkOnce(ctx, dedupeKey, utils.NotifyDedupeTTL)
	if err != nil {
		d.Logger.Warn("notification dedupe check failed, dispatching anyway",
			zap.String("sessionId", sessionID), zap.Error(err))
	} else if !first {
		return
	}

	payload := EventPayload{
		PartyID:   partyID,
		SessionID: sessionID,
		EventKind: eventKind,
		Data:      data,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		d.Logger.Error("failed to marshal notification payload",
			zap.String("sessionId", sessionID), zap.Error(err))
		return
	}
	if _, err := d.Client.EnqueueContext(ctx, asynq.NewTask(TypeNotifyEvent, b)); err != nil {
		d.Logger.Warn("failed to enqueue notification",
			zap.String("sessionId", sessionID),
			zap.String("eventKind", eventKind),
			zap.Error(err))
	}
}
