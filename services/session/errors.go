package session

import "fmt"

// Guard failure kinds for lifecycle transitions and the rendezvous.
const (
	// KindNotPending is reserved for events that specifically require a
	// pending session (confirm, reject). Other wrong-status guards use
	// KindWrongStatus so the kind never contradicts the message.
	KindNotPending         = "NotPending"
	KindWrongStatus        = "WrongStatus"
	KindAlreadyClosed      = "AlreadyClosed"
	KindOutsideStartWindow = "OutsideStartWindow"
	KindTooLateToCancel    = "TooLateToCancel"
	KindNotAuthorized      = "NotAuthorized"
	KindNotFound           = "NotFound"
	KindRendezvousExpired  = "RendezvousExpired"
	KindUnknownEvent       = "UnknownEvent"
)

// StateError is a typed guard failure. Transitions never silently no-op;
// an incompatible status or window always surfaces with its kind.
type StateError struct {
	Kind    string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewStateError(kind, format string, args ...interface{}) error {
	return &StateError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
