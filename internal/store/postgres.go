package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
)

// userRow is the gorm mapping of the users table.
type userRow struct {
	UserID               string     `gorm:"column:user_id;primaryKey"`
	ConversationHandle   *string    `gorm:"column:conversation_handle"`
	NotificationsEnabled bool       `gorm:"column:notifications_enabled;not null;default:true"`
	SnoozedUntil         *time.Time `gorm:"column:snoozed_until"`
	LastAlertSent        *time.Time `gorm:"column:last_alert_sent"`
	CreatedAt            time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;not null"`
}

func (userRow) TableName() string { return "users" }

func (u userRow) toDomain() *domain.Record {
	rec := &domain.Record{
		UserID:        u.UserID,
		Enabled:       u.NotificationsEnabled,
		SnoozedUntil:  copyTime(u.SnoozedUntil),
		LastAlertSent: copyTime(u.LastAlertSent),
		UpdatedAt:     u.UpdatedAt.UTC(),
	}
	if u.ConversationHandle != nil {
		rec.Handle = *u.ConversationHandle
	}
	return rec
}

// PostgresRepo implements Repo on PostgreSQL through gorm.
type PostgresRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenPostgres connects to dsn and migrates the users table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &PostgresRepo{db: db, now: time.Now}, nil
}

// Close closes the underlying connection pool.
func (r *PostgresRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertHandle is an atomic INSERT ... ON CONFLICT (user_id) DO UPDATE of the handle only.
func (r *PostgresRepo) UpsertHandle(ctx context.Context, userID, handle string) error {
	now := r.now().UTC()
	row := &userRow{
		UserID:               userID,
		ConversationHandle:   &handle,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"conversation_handle", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return storageErr("upsert handle", err)
	}
	return nil
}

func (r *PostgresRepo) GetHandle(ctx context.Context, userID string) (string, error) {
	rec, err := r.GetRecord(ctx, userID)
	if err != nil {
		return "", err
	}
	if rec.Handle == "" {
		return "", domain.ErrNotFound
	}
	return rec.Handle, nil
}

func (r *PostgresRepo) SetNotificationStatus(ctx context.Context, userID string, enabled bool, snoozedUntil *time.Time) error {
	var snooze any
	if snoozedUntil != nil {
		snooze = snoozedUntil.UTC()
	}
	res := r.db.WithContext(ctx).Model(&userRow{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"notifications_enabled": enabled,
			"snoozed_until":         snooze,
			"updated_at":            r.now().UTC(),
		})
	if res.Error != nil {
		return storageErr("set notification status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) GetNotificationStatus(ctx context.Context, userID string) (domain.Status, error) {
	rec, err := r.GetRecord(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultStatus(), nil
	}
	if err != nil {
		return domain.Status{}, err
	}
	return rec.Status(), nil
}

func (r *PostgresRepo) MarkAlertSent(ctx context.Context, userID string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&userRow{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"last_alert_sent": at.UTC(),
			"updated_at":      r.now().UTC(),
		}).Error
	if err != nil {
		return storageErr("mark alert sent", err)
	}
	return nil
}

func (r *PostgresRepo) GetRecord(ctx context.Context, userID string) (*domain.Record, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get record", err)
	}
	return row.toDomain(), nil
}
