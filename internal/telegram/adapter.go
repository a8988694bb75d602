package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

// BotAPI is the part of *tgbotapi.BotAPI the adapter uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// chatRef is the serialized form of a Telegram conversation handle.
type chatRef struct {
	ChatID   int64  `json:"chat_id"`
	UserID   int64  `json:"user_id,omitempty"`
	ChatType string `json:"chat_type,omitempty"`
}

func encodeHandle(ref chatRef) transport.Handle {
	b, _ := json.Marshal(ref)
	return transport.Handle(b)
}

func decodeHandle(h transport.Handle) (chatRef, error) {
	var ref chatRef
	if err := json.Unmarshal([]byte(h), &ref); err != nil {
		return chatRef{}, fmt.Errorf("decode handle: %w", err)
	}
	if ref.ChatID == 0 {
		return chatRef{}, errors.New("decode handle: missing chat id")
	}
	return ref, nil
}

// Adapter pushes messages to Telegram chats. It implements transport.Pusher and transport.Acknowledger.
type Adapter struct {
	api     BotAPI
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewAdapter wraps api. ratePerSec caps outbound sends (Telegram allows about 30/s per bot).
func NewAdapter(api BotAPI, ratePerSec int, log *zap.Logger) *Adapter {
	if ratePerSec <= 0 {
		ratePerSec = 25
	}
	return &Adapter{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		log:     log.Named("telegram"),
	}
}

// Push sends msg to the chat h points at. It does not need an inbound update.
func (a *Adapter) Push(ctx context.Context, h transport.Handle, msg transport.Message) error {
	ref, err := decodeHandle(h)
	if err != nil {
		return &transport.Error{Kind: transport.KindRejected, Op: "push", Err: err}
	}
	out, err := buildMessage(ref.ChatID, msg)
	if err != nil {
		return &transport.Error{Kind: transport.KindRejected, Op: "push", Err: err}
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return &transport.Error{Kind: transport.KindTimeout, Op: "push", Err: err}
	}
	return a.call(ctx, "push", func() error {
		_, err := a.api.Send(out)
		return err
	})
}

// Acknowledge answers a callback query so the client stops its spinner.
func (a *Adapter) Acknowledge(ctx context.Context, callbackID, text string) error {
	return a.call(ctx, "acknowledge", func() error {
		_, err := a.api.Request(tgbotapi.NewCallback(callbackID, text))
		return err
	})
}

// call runs fn and gives up when ctx ends. tgbotapi has no context support,
// so an abandoned call finishes in the background and its result is dropped.
func (a *Adapter) call(ctx context.Context, op string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		if err != nil {
			return classify(op, err)
		}
		return nil
	case <-ctx.Done():
		return &transport.Error{Kind: transport.KindTimeout, Op: op, Err: ctx.Err()}
	}
}

func buildMessage(chatID int64, msg transport.Message) (tgbotapi.MessageConfig, error) {
	if len(msg.Card) == 0 {
		if msg.Text == "" {
			return tgbotapi.MessageConfig{}, errors.New("empty message")
		}
		return tgbotapi.NewMessage(chatID, msg.Text), nil
	}

	text, buttons, err := renderCard(msg.Card)
	if err != nil {
		return tgbotapi.MessageConfig{}, err
	}
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if kb, ok := inlineKeyboard(buttons); ok {
		out.ReplyMarkup = kb
	}
	return out, nil
}

// classify maps tgbotapi and network failures onto transport error kinds.
func classify(op string, err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		kind := transport.KindUnavailable
		switch {
		case tgErr.Code == 403:
			kind = transport.KindForbidden
		case tgErr.Code == 429 || tgErr.RetryAfter > 0:
			kind = transport.KindRateLimited
		case tgErr.Code >= 400 && tgErr.Code < 500:
			kind = transport.KindRejected
		}
		return &transport.Error{Kind: kind, Op: op, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &transport.Error{Kind: transport.KindTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &transport.Error{Kind: transport.KindTimeout, Op: op, Err: err}
	}
	return &transport.Error{Kind: transport.KindUnavailable, Op: op, Err: err}
}
