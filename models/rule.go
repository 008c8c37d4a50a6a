package models

import "time"

// AvailabilityRule is a provider-declared booking window. A rule is either
// recurring (Weekday set, no date range) or date-bound (DateStart/DateEnd
// set, inclusive on both ends). Start and End are minutes from midnight
// with Start < End. Rules are soft-disabled via Active rather than deleted
// while sessions may still reference the window.
type AvailabilityRule struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Weekday    *int      `bson:"weekday,omitempty" json:"weekday,omitempty"`     // 0 (Sunday) .. 6 (Saturday)
	DateStart  string    `bson:"dateStart,omitempty" json:"dateStart,omitempty"` // "2006-01-02"
	DateEnd    string    `bson:"dateEnd,omitempty" json:"dateEnd,omitempty"`     // "2006-01-02"
	Start      int       `bson:"start" json:"start"`                             // minutes from midnight
	End        int       `bson:"end" json:"end"`                                 // minutes from midnight
	Active     bool      `bson:"active" json:"active"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// Recurring reports whether the rule repeats weekly rather than covering a
// fixed date range.
func (r AvailabilityRule) Recurring() bool {
	return r.Weekday != nil
}

// MatchesDate reports whether the rule applies on the given calendar date.
func (r AvailabilityRule) MatchesDate(date string) bool {
	if r.Recurring() {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return false
		}
		return int(d.Weekday()) == *r.Weekday
	}
	// Date strings in "2006-01-02" order lexicographically.
	return r.DateStart <= date && date <= r.DateEnd
}
