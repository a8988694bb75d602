// Package transport is the boundary to the messaging platform: the inbound event model,
// the outbound message and the classified push error.
package transport

import (
	"context"
	"encoding/json"
)

// Handle is an opaque serialized conversation reference. Only the adapter that produced it can read it.
type Handle string

// EventKind tags an inbound Event.
type EventKind string

const (
	// EventMessage is a chat turn: free text typed by the user.
	EventMessage EventKind = "message"
	// EventButton is a button press carrying a structured payload.
	EventButton EventKind = "button"
	// EventConversationOpened means the user installed, started or re-opened the conversation.
	EventConversationOpened EventKind = "conversation_opened"
)

// Event is one inbound unit of work from the platform.
type Event struct {
	Kind EventKind

	// UserID is the stable platform user id, or the conversation id when
	// IdentityFallback is set (no sender was available).
	UserID           string
	IdentityFallback bool
	UserName         string

	// Personal is true for one-to-one conversations. Group and channel events are ignored.
	Personal bool

	// Handle addresses the conversation the event came from; replies and later pushes use it.
	Handle Handle

	// Text is set for EventMessage.
	Text string
	// Command is set for EventButton when the payload carried a "command" field.
	Command *string
	// CallbackID lets the adapter acknowledge a button press.
	CallbackID string
}

// CommandText returns the raw command of the event regardless of how it arrived.
func (e Event) CommandText() string {
	if e.Kind == EventButton {
		if e.Command == nil {
			return ""
		}
		return *e.Command
	}
	return e.Text
}

// Button is an actionable element of an outbound message.
type Button struct {
	Title   string
	Command string // set for buttons that send a command back
	URL     string // set for link buttons
}

// Message is an outbound message. Card, when set, is passed through verbatim
// and rendered by the adapter; Text is used for plain replies.
type Message struct {
	Text string
	Card json.RawMessage
}

// Pusher delivers a message to the conversation a handle points at.
// It works outside any inbound turn. Failures are *Error values.
type Pusher interface {
	Push(ctx context.Context, h Handle, msg Message) error
}

// Acknowledger is implemented by adapters that must confirm button presses.
type Acknowledger interface {
	Acknowledge(ctx context.Context, callbackID, text string) error
}
