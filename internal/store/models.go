package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
)

// Timestamps are stored as unix nanoseconds so a snooze expiry round-trips exactly.

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixNano(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(0, ns.Int64).UTC()
	return &t
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// copyTime detaches a nullable timestamp from the caller's variable.
func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := t.UTC()
	return &c
}
