package domain

import "time"

// Status is the notification preference of a user: one flag plus an optional snooze expiry.
type Status struct {
	Enabled      bool
	SnoozedUntil *time.Time
}

// DefaultStatus is what a user who never interacted with the bot gets.
func DefaultStatus() Status {
	return Status{Enabled: true}
}

// Eligible reports whether an alert should be delivered at now.
// A snooze that ends exactly at now no longer suppresses.
func (s Status) Eligible(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.SnoozedUntil == nil {
		return true
	}
	return !s.SnoozedUntil.After(now)
}

// Snoozed reports whether a snooze is still running at now.
func (s Status) Snoozed(now time.Time) bool {
	return s.Enabled && s.SnoozedUntil != nil && s.SnoozedUntil.After(now)
}
