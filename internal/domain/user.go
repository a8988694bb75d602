package domain

import "time"

// Record is the persisted per-user notification state.
// UserID is assigned by the messaging platform and is never generated locally.
type Record struct {
	UserID        string
	Handle        string     // opaque conversation handle, empty until the conversation was opened
	Enabled       bool       // default true on creation
	SnoozedUntil  *time.Time // UTC, nullable
	LastAlertSent *time.Time // UTC, nullable, advisory only
	UpdatedAt     time.Time  // UTC
}

// NewRecord returns a record with first-contact defaults.
func NewRecord(userID string, now time.Time) Record {
	return Record{
		UserID:    userID,
		Enabled:   true,
		UpdatedAt: now.UTC(),
	}
}

// Status returns the notification preference part of the record.
func (r Record) Status() Status {
	return Status{Enabled: r.Enabled, SnoozedUntil: r.SnoozedUntil}
}
