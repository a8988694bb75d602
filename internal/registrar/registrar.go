// Package registrar stores the conversation handle when a user opens a one-to-one
// conversation and greets them with the welcome card.
package registrar

import (
	"context"

	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/store"
	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

// Outcome reports what Register did.
type Outcome int

const (
	Ignored           Outcome = iota // not a personal conversation-opened event
	Welcomed                         // handle stored, welcome delivered
	WelcomeSuppressed                // handle stored, platform refused the welcome as forbidden
	Failed                           // something else went wrong; the user saw an error message
)

// Registrar upserts handles on conversation-opened events.
type Registrar struct {
	repo   store.Repo
	pusher transport.Pusher
	log    *zap.Logger
}

// New creates a Registrar.
func New(repo store.Repo, pusher transport.Pusher, log *zap.Logger) *Registrar {
	return &Registrar{repo: repo, pusher: pusher, log: log.Named("registrar")}
}

// Register handles one conversation-opened event. It never returns an error:
// failures are logged and reported to the conversation.
func (r *Registrar) Register(ctx context.Context, ev transport.Event) Outcome {
	if ev.Kind != transport.EventConversationOpened {
		return Ignored
	}
	if !ev.Personal {
		r.log.Debug("conversation opened outside a personal chat, skipping", zap.String("user_id", ev.UserID))
		return Ignored
	}

	log := r.log.With(zap.String("user_id", ev.UserID))
	if ev.IdentityFallback {
		// The key is a conversation id, not a user id; a later event with a sender will register under a different key.
		log.Warn("sender unavailable, registering under conversation id")
	}

	if err := r.repo.UpsertHandle(ctx, ev.UserID, string(ev.Handle)); err != nil {
		log.Error("store conversation handle failed", zap.Error(err))
		r.reportFailure(ctx, ev.Handle, log)
		return Failed
	}
	log.Info("conversation handle stored", zap.String("user_name", ev.UserName))

	err := r.pusher.Push(ctx, ev.Handle, transport.Message{Card: welcomeCard})
	switch {
	case err == nil:
		log.Info("welcome sent")
		return Welcomed
	case transport.IsKind(err, transport.KindForbidden):
		log.Warn("welcome refused as forbidden, likely already delivered", zap.Error(err))
		return WelcomeSuppressed
	default:
		log.Error("send welcome failed", zap.Error(err))
		r.reportFailure(ctx, ev.Handle, log)
		return Failed
	}
}

func (r *Registrar) reportFailure(ctx context.Context, h transport.Handle, log *zap.Logger) {
	if err := r.pusher.Push(ctx, h, transport.Message{Text: setupFailedText}); err != nil {
		log.Warn("report failure to conversation failed", zap.Error(err))
	}
}
