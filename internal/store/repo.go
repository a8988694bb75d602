package store

import (
	"context"
	"time"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
)

// Repo is the State Store: one record per user id, every write is a per-user upsert or update.
//
// Writes touch disjoint field sets (handle, status, last alert), so concurrent writes for the
// same user never lose each other's fields. Two status writes racing for the same user resolve
// last-writer-wins.
type Repo interface {
	// UpsertHandle creates the record with defaults (enabled, no snooze) or replaces only its handle.
	UpsertHandle(ctx context.Context, userID, handle string) error
	// GetHandle returns domain.ErrNotFound when the user has no stored handle.
	GetHandle(ctx context.Context, userID string) (string, error)
	// SetNotificationStatus overwrites enabled and snooze together; nil snoozedUntil clears the snooze.
	// It returns domain.ErrNotFound when no record exists.
	SetNotificationStatus(ctx context.Context, userID string, enabled bool, snoozedUntil *time.Time) error
	// GetNotificationStatus returns domain.DefaultStatus for unknown users.
	GetNotificationStatus(ctx context.Context, userID string) (domain.Status, error)
	// MarkAlertSent records the send time; a missing record is not an error.
	MarkAlertSent(ctx context.Context, userID string, at time.Time) error
	// GetRecord returns the whole record or domain.ErrNotFound.
	GetRecord(ctx context.Context, userID string) (*domain.Record, error)
	Close() error
}
