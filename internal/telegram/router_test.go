package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

func privateChat(id int64) *tgbotapi.Chat { return &tgbotapi.Chat{ID: id, Type: "private"} }

func commandMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: privateChat(100),
		From: &tgbotapi.User{ID: 7, UserName: "ann"},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}
}

func TestToEventStartOpensConversation(t *testing.T) {
	ev, ok := ToEvent(tgbotapi.Update{Message: commandMessage("/start")})
	if !ok {
		t.Fatalf("expected event")
	}
	if ev.Kind != transport.EventConversationOpened || ev.UserID != "7" || !ev.Personal {
		t.Fatalf("unexpected event: %+v", ev)
	}
	ref, err := decodeHandle(ev.Handle)
	if err != nil || ref.ChatID != 100 || ref.UserID != 7 {
		t.Fatalf("unexpected handle %q: %v", ev.Handle, err)
	}
}

func TestToEventTextMessage(t *testing.T) {
	msg := &tgbotapi.Message{Text: "snooze for 1 hour", Chat: privateChat(100), From: &tgbotapi.User{ID: 7}}
	ev, ok := ToEvent(tgbotapi.Update{Message: msg})
	if !ok || ev.Kind != transport.EventMessage || ev.CommandText() != "snooze for 1 hour" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestToEventSlashCommandIsChatTurn(t *testing.T) {
	ev, ok := ToEvent(tgbotapi.Update{Message: commandMessage("/status")})
	if !ok || ev.Kind != transport.EventMessage || ev.Text != "/status" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestToEventIdentityFallback(t *testing.T) {
	msg := &tgbotapi.Message{Text: "hi", Chat: privateChat(555)}
	ev, ok := ToEvent(tgbotapi.Update{Message: msg})
	if !ok || !ev.IdentityFallback || ev.UserID != "555" {
		t.Fatalf("expected chat id fallback, got %+v", ev)
	}
}

func TestToEventGroupIsNotPersonal(t *testing.T) {
	msg := &tgbotapi.Message{Text: "stop notifications", Chat: &tgbotapi.Chat{ID: -10, Type: "group"}, From: &tgbotapi.User{ID: 7}}
	ev, ok := ToEvent(tgbotapi.Update{Message: msg})
	if !ok || ev.Personal {
		t.Fatalf("group event must not be personal: %+v", ev)
	}
}

func TestToEventCallback(t *testing.T) {
	upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-9",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{Chat: privateChat(100)},
		Data:    `{"command":"stop notifications"}`,
	}}
	ev, ok := ToEvent(upd)
	if !ok || ev.Kind != transport.EventButton || ev.CallbackID != "cb-9" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.CommandText() != "stop notifications" {
		t.Fatalf("unexpected command %q", ev.CommandText())
	}

	upd.CallbackQuery.Data = "garbage"
	ev, ok = ToEvent(upd)
	if !ok || ev.Command != nil || ev.CommandText() != "" {
		t.Fatalf("garbage payload should give an empty command: %+v", ev)
	}
}

func TestToEventMyChatMember(t *testing.T) {
	member := func(old, cur string) tgbotapi.Update {
		return tgbotapi.Update{MyChatMember: &tgbotapi.ChatMemberUpdated{
			Chat:          tgbotapi.Chat{ID: 100, Type: "private"},
			From:          tgbotapi.User{ID: 7},
			OldChatMember: tgbotapi.ChatMember{Status: old},
			NewChatMember: tgbotapi.ChatMember{Status: cur},
		}}
	}

	ev, ok := ToEvent(member("kicked", "member"))
	if !ok || ev.Kind != transport.EventConversationOpened || ev.UserID != "7" {
		t.Fatalf("unblock should open the conversation: %+v", ev)
	}
	if _, ok := ToEvent(member("member", "kicked")); ok {
		t.Fatalf("block must not produce an event")
	}
}

func TestToEventUnknownUpdate(t *testing.T) {
	if _, ok := ToEvent(tgbotapi.Update{UpdateID: 1}); ok {
		t.Fatalf("empty update must be ignored")
	}
}

type recordingHandler struct{ events []transport.Event }

func (r *recordingHandler) HandleEvent(_ context.Context, ev transport.Event) {
	r.events = append(r.events, ev)
}

func TestRouterHandleUpdate(t *testing.T) {
	h := &recordingHandler{}
	r := NewRouter(h, zap.NewNop())

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage("/start")})
	r.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 2})

	if len(h.events) != 1 {
		t.Fatalf("expected 1 routed event, got %d", len(h.events))
	}
}
