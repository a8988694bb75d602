// Package alert pushes externally triggered alerts to a user's stored conversation.
//
// The dispatcher makes exactly one delivery attempt per call and does not check
// notification eligibility: deciding whether a user should be alerted belongs to the
// caller. Retries, when wanted, are the caller re-invoking SendAlert.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
	"github.com/ykvlv/alert-relay-bot/internal/store"
	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

// Result describes a successful delivery.
type Result struct {
	DeliveryID string
	UserID     string
	SentAt     time.Time
}

// DeliveryError wraps any failure after the handle was resolved.
type DeliveryError struct {
	UserID     string
	DeliveryID string
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver alert %s to %s: %v", e.DeliveryID, e.UserID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Dispatcher resolves handles and pushes alerts out of band.
type Dispatcher struct {
	repo    store.Repo
	pusher  transport.Pusher
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewDispatcher creates a Dispatcher. A positive timeout bounds each push.
func NewDispatcher(repo store.Repo, pusher transport.Pusher, log *zap.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		pusher:  pusher,
		log:     log.Named("alert"),
		timeout: timeout,
		now:     time.Now,
	}
}

// SendAlert delivers payload to userID.
//
// It returns domain.ErrNoHandle (no transport call made) when the user never opened the
// conversation, a domain.ErrValidation error for an empty payload, and a *DeliveryError
// for push or bookkeeping failures.
func (d *Dispatcher) SendAlert(ctx context.Context, userID string, payload json.RawMessage) (Result, error) {
	deliveryID := uuid.NewString()
	log := d.log.With(zap.String("user_id", userID), zap.String("delivery_id", deliveryID))

	if userID == "" {
		return Result{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	handle, err := d.repo.GetHandle(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("no conversation handle stored, alert not delivered")
		return Result{}, domain.ErrNoHandle
	}
	if err != nil {
		log.Error("resolve handle failed", zap.Error(err))
		return Result{}, &DeliveryError{UserID: userID, DeliveryID: deliveryID, Err: err}
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Result{}, fmt.Errorf("%w: alert payload is required", domain.ErrValidation)
	}
	msg := transport.Message{Card: json.RawMessage(trimmed)}

	pushCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		pushCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.pusher.Push(pushCtx, transport.Handle(handle), msg); err != nil {
		log.Error("push failed",
			zap.String("kind", string(transport.KindOf(err))),
			zap.Error(err),
		)
		return Result{}, &DeliveryError{UserID: userID, DeliveryID: deliveryID, Err: err}
	}

	sentAt := d.now().UTC()
	if err := d.repo.MarkAlertSent(ctx, userID, sentAt); err != nil {
		log.Error("alert delivered but last-sent time not recorded", zap.Error(err))
		return Result{}, &DeliveryError{UserID: userID, DeliveryID: deliveryID, Err: err}
	}

	log.Info("alert delivered")
	return Result{DeliveryID: deliveryID, UserID: userID, SentAt: sentAt}, nil
}
