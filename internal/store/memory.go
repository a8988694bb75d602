package store

import (
	"context"
	"sync"
	"time"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
)

// MemoryRepo is a process-local Repo. State is lost on restart.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]domain.Record
	now   func() time.Time
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]domain.Record), now: time.Now}
}

func (r *MemoryRepo) Close() error { return nil }

func (r *MemoryRepo) UpsertHandle(_ context.Context, userID, handle string) error {
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.users[userID]
	if !ok {
		rec = domain.NewRecord(userID, now)
	}
	rec.Handle = handle
	rec.UpdatedAt = now
	r.users[userID] = rec
	return nil
}

func (r *MemoryRepo) GetHandle(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok || rec.Handle == "" {
		return "", domain.ErrNotFound
	}
	return rec.Handle, nil
}

func (r *MemoryRepo) SetNotificationStatus(_ context.Context, userID string, enabled bool, snoozedUntil *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Enabled = enabled
	rec.SnoozedUntil = copyTime(snoozedUntil)
	rec.UpdatedAt = r.now().UTC()
	r.users[userID] = rec
	return nil
}

func (r *MemoryRepo) GetNotificationStatus(_ context.Context, userID string) (domain.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return domain.DefaultStatus(), nil
	}
	return domain.Status{Enabled: rec.Enabled, SnoozedUntil: copyTime(rec.SnoozedUntil)}, nil
}

func (r *MemoryRepo) MarkAlertSent(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.users[userID]
	if !ok {
		return nil
	}
	rec.LastAlertSent = copyTime(&at)
	rec.UpdatedAt = r.now().UTC()
	r.users[userID] = rec
	return nil
}

func (r *MemoryRepo) GetRecord(_ context.Context, userID string) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.SnoozedUntil = copyTime(rec.SnoozedUntil)
	rec.LastAlertSent = copyTime(rec.LastAlertSent)
	return &rec, nil
}
