package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single writer: every per-user upsert is serialized by the one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, now: time.Now}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// UpsertHandle inserts a record with defaults or refreshes only the handle of an existing one.
func (r *SQLiteRepo) UpsertHandle(ctx context.Context, userID, handle string) error {
	now := r.now().UTC().UnixNano()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, conversation_handle, notifications_enabled, created_at, updated_at
		) VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			conversation_handle = excluded.conversation_handle,
			updated_at          = excluded.updated_at`,
		userID, handle, now, now,
	)
	if err != nil {
		return storageErr("upsert handle", err)
	}
	return nil
}

// GetHandle returns the stored handle for userID.
func (r *SQLiteRepo) GetHandle(ctx context.Context, userID string) (string, error) {
	var handle sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT conversation_handle FROM users WHERE user_id = ?`, userID,
	).Scan(&handle)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", storageErr("get handle", err)
	}
	if !handle.Valid || handle.String == "" {
		return "", domain.ErrNotFound
	}
	return handle.String, nil
}

// SetNotificationStatus overwrites the enabled flag and snooze expiry of an existing record.
func (r *SQLiteRepo) SetNotificationStatus(ctx context.Context, userID string, enabled bool, snoozedUntil *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET notifications_enabled = ?, snoozed_until = ?, updated_at = ?
		WHERE user_id = ?`,
		boolToInt(enabled), toNullInt64(snoozedUntil), r.now().UTC().UnixNano(), userID,
	)
	if err != nil {
		return storageErr("set notification status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("set notification status", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetNotificationStatus returns the user's status, or the default for unknown users.
func (r *SQLiteRepo) GetNotificationStatus(ctx context.Context, userID string) (domain.Status, error) {
	var (
		enabledInt int
		snoozedNS  sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT notifications_enabled, snoozed_until
		FROM users
		WHERE user_id = ?`,
		userID,
	).Scan(&enabledInt, &snoozedNS)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultStatus(), nil
	}
	if err != nil {
		return domain.Status{}, storageErr("get notification status", err)
	}
	return domain.Status{Enabled: enabledInt != 0, SnoozedUntil: fromNullInt64(snoozedNS)}, nil
}

// MarkAlertSent sets last_alert_sent; unknown users are ignored.
func (r *SQLiteRepo) MarkAlertSent(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET last_alert_sent = ?, updated_at = ?
		WHERE user_id = ?`,
		at.UTC().UnixNano(), r.now().UTC().UnixNano(), userID,
	)
	if err != nil {
		return storageErr("mark alert sent", err)
	}
	return nil
}

// GetRecord returns the full record for userID.
func (r *SQLiteRepo) GetRecord(ctx context.Context, userID string) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, conversation_handle, notifications_enabled,
		       snoozed_until, last_alert_sent, updated_at
		FROM users
		WHERE user_id = ?`,
		userID,
	)

	var (
		userIDOut  string
		handle     sql.NullString
		enabledInt int
		snoozedNS  sql.NullInt64
		lastNS     sql.NullInt64
		updatedAt  int64
	)
	if err := row.Scan(&userIDOut, &handle, &enabledInt, &snoozedNS, &lastNS, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get record", err)
	}

	return &domain.Record{
		UserID:        userIDOut,
		Handle:        handle.String,
		Enabled:       enabledInt != 0,
		SnoozedUntil:  fromNullInt64(snoozedNS),
		LastAlertSent: fromNullInt64(lastNS),
		UpdatedAt:     time.Unix(0, updatedAt).UTC(),
	}, nil
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
