package scheduling

import "fmt"

// Rejection kinds for booking validation. Every refusal carries one of
// these stable codes so callers can present a precise message.
const (
	KindInvalidDuration    = "InvalidDuration"
	KindSlotUnavailable    = "SlotUnavailable"
	KindDuplicateBooking   = "DuplicateBooking"
	KindPastStartTime      = "PastStartTime"
	KindSlotConflict       = "SlotConflict" // lost a concurrent booking race
	KindProviderIneligible = "ProviderIneligible"
)

// BookingError is a typed rejection from the booking validator.
type BookingError struct {
	Kind    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewBookingError(kind, format string, args ...interface{}) error {
	return &BookingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
