package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

// EventHandler consumes platform-neutral events.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev transport.Event)
}

// Router converts Telegram updates into transport events.
type Router struct {
	handler EventHandler
	log     *zap.Logger
}

// NewRouter creates a new Telegram router.
func NewRouter(handler EventHandler, log *zap.Logger) *Router {
	return &Router{handler: handler, log: log.Named("router")}
}

// HandleUpdate routes a single update. Updates without a counterpart event are dropped.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	ev, ok := ToEvent(upd)
	if !ok {
		r.log.Debug("update ignored", zap.Int("update_id", upd.UpdateID))
		return
	}
	r.handler.HandleEvent(ctx, ev)
}

// ToEvent maps an update onto an Event.
//   - "/start" in a message opens the conversation; other messages are chat turns.
//   - A callback query is a button press; its data is {"command": "..."}.
//   - my_chat_member moving a private chat from kicked/left to member re-opens the conversation.
func ToEvent(upd tgbotapi.Update) (transport.Event, bool) {
	switch {
	case upd.Message != nil:
		msg := upd.Message
		if msg.Chat == nil {
			return transport.Event{}, false
		}
		ev := newEvent(msg.Chat, msg.From)
		if msg.IsCommand() && msg.Command() == "start" {
			ev.Kind = transport.EventConversationOpened
			return ev, true
		}
		ev.Kind = transport.EventMessage
		ev.Text = msg.Text
		return ev, true

	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil {
			return transport.Event{}, false
		}
		ev := newEvent(cq.Message.Chat, cq.From)
		ev.Kind = transport.EventButton
		ev.CallbackID = cq.ID
		if cmd, ok := decodeCallback(cq.Data); ok {
			ev.Command = cmd
		}
		return ev, true

	case upd.MyChatMember != nil:
		m := upd.MyChatMember
		if !m.Chat.IsPrivate() || m.NewChatMember.Status != "member" {
			return transport.Event{}, false
		}
		if old := m.OldChatMember.Status; old != "kicked" && old != "left" {
			return transport.Event{}, false
		}
		from := m.From
		ev := newEvent(&m.Chat, &from)
		ev.Kind = transport.EventConversationOpened
		return ev, true
	}
	return transport.Event{}, false
}

func newEvent(chat *tgbotapi.Chat, from *tgbotapi.User) transport.Event {
	ref := chatRef{ChatID: chat.ID, ChatType: chat.Type}
	ev := transport.Event{Personal: chat.IsPrivate()}
	if from != nil && from.ID != 0 {
		ref.UserID = from.ID
		ev.UserID = strconv.FormatInt(from.ID, 10)
		ev.UserName = displayName(from)
	} else {
		ev.UserID = strconv.FormatInt(chat.ID, 10)
		ev.IdentityFallback = true
	}
	ev.Handle = encodeHandle(ref)
	return ev
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
