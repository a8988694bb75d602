// Package bot handles inbound chat turns independently of the messaging platform.
package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
	"github.com/ykvlv/alert-relay-bot/internal/registrar"
	"github.com/ykvlv/alert-relay-bot/internal/store"
	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

const genericErrorText = "Something went wrong. Please try again later."

// Handler routes inbound events: conversation-opened events go to the registrar,
// chat turns and button presses go through the command interpreter.
// It holds no per-user state; everything lives in the store.
type Handler struct {
	repo      store.Repo
	pusher    transport.Pusher
	registrar *registrar.Registrar
	log       *zap.Logger
	tz        string
	now       func() time.Time
}

// NewHandler creates a Handler. tz is used to render snooze expiry in replies.
func NewHandler(repo store.Repo, pusher transport.Pusher, reg *registrar.Registrar, log *zap.Logger, tz string) *Handler {
	return &Handler{
		repo:      repo,
		pusher:    pusher,
		registrar: reg,
		log:       log.Named("bot"),
		tz:        tz,
		now:       time.Now,
	}
}

// HandleEvent processes one inbound event. It never panics the caller's loop and never returns an error:
// failures are logged and turned into a generic reply.
func (h *Handler) HandleEvent(ctx context.Context, ev transport.Event) {
	switch ev.Kind {
	case transport.EventConversationOpened:
		h.registrar.Register(ctx, ev)
	case transport.EventMessage, transport.EventButton:
		h.handleCommand(ctx, ev)
	default:
		h.log.Debug("unsupported event kind", zap.String("kind", string(ev.Kind)))
	}
}

func (h *Handler) handleCommand(ctx context.Context, ev transport.Event) {
	if !ev.Personal {
		return
	}
	log := h.log.With(zap.String("user_id", ev.UserID))

	if ev.CallbackID != "" {
		if ack, ok := h.pusher.(transport.Acknowledger); ok {
			if err := ack.Acknowledge(ctx, ev.CallbackID, ""); err != nil {
				log.Debug("acknowledge button failed", zap.Error(err))
			}
		}
	}

	// Every turn refreshes the handle; on first contact this creates the record with defaults.
	if err := h.repo.UpsertHandle(ctx, ev.UserID, string(ev.Handle)); err != nil {
		log.Error("store conversation handle failed", zap.Error(err))
		h.reply(ctx, ev, genericErrorText, log)
		return
	}

	intent := domain.Interpret(ev.CommandText())
	switch intent.Action {
	case domain.ActionSet:
		st := intent.Apply(h.now())
		if err := h.repo.SetNotificationStatus(ctx, ev.UserID, st.Enabled, st.SnoozedUntil); err != nil {
			log.Error("update notification status failed", zap.String("command", intent.Command), zap.Error(err))
			h.reply(ctx, ev, genericErrorText, log)
			return
		}
		log.Info("notification status updated",
			zap.String("command", intent.Command),
			zap.Bool("enabled", st.Enabled),
			zap.Timep("snoozed_until", st.SnoozedUntil),
		)
		h.reply(ctx, ev, intent.Reply, log)

	case domain.ActionStatus:
		st, err := h.repo.GetNotificationStatus(ctx, ev.UserID)
		if err != nil {
			log.Error("read notification status failed", zap.Error(err))
			h.reply(ctx, ev, genericErrorText, log)
			return
		}
		h.reply(ctx, ev, domain.DescribeStatus(st, h.now(), h.tz), log)

	default:
		h.reply(ctx, ev, intent.Reply, log)
	}
}

func (h *Handler) reply(ctx context.Context, ev transport.Event, text string, log *zap.Logger) {
	if err := h.pusher.Push(ctx, ev.Handle, transport.Message{Text: text}); err != nil {
		log.Warn("reply failed", zap.String("kind", string(transport.KindOf(err))), zap.Error(err))
	}
}
