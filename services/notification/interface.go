package notification

import "context"

// Event kinds dispatched on lifecycle transitions.
const (
	EventSessionConfirmed = "session.confirmed"
	EventSessionCancelled = "session.cancelled"
	EventSessionCompleted = "session.completed"
)

// NotificationService defines the delivery collaborator. Dispatch is
// fire-and-forget: a failed delivery never rolls back the lifecycle
// transition that triggered it.
type NotificationService interface {
	Notify(ctx context.Context, partyID, eventKind string, payload map[string]string) error
}
