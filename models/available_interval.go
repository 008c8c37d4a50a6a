package models

import "fmt"

// AvailableInterval represents a continuous time block available for booking.
type AvailableInterval struct {
	Start int    `json:"start"` // Minutes from midnight
	End   int    `json:"end"`   // Minutes from midnight
	Label string `json:"label"` // e.g., "09:00 - 10:30"
}

// ClockLabel renders minutes-from-midnight as "HH:MM".
func ClockLabel(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
