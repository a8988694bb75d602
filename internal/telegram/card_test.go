package telegram

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

func TestRenderAdaptiveCard(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "AdaptiveCard",
		"body": [
			{"type": "TextBlock", "text": "Build failed", "weight": "Bolder"},
			{"type": "Container", "items": [{"type": "TextBlock", "text": "main & release"}]},
			{"type": "FactSet", "facts": [{"title": "Repo", "value": "api"}]},
			{"type": "ColumnSet", "columns": [{"items": [{"type": "TextBlock", "text": "left"}]}]},
			{"type": "Image", "url": "https://example.com/x.png"}
		],
		"actions": [
			{"type": "Action.OpenUrl", "title": "Open", "url": "https://ci.example.com/1"},
			{"type": "Action.Submit", "title": "Snooze", "data": {"command": "snooze for 1 hour"}},
			{"type": "Action.Submit", "title": "Other", "data": {"foo": "bar"}}
		]
	}`)

	text, buttons, err := renderCard(raw)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<b>Build failed</b>\nmain &amp; release\n<b>Repo</b> api\nleft"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
	wantButtons := []transport.Button{
		{Title: "Open", URL: "https://ci.example.com/1"},
		{Title: "Snooze", Command: "snooze for 1 hour"},
	}
	if len(buttons) != len(wantButtons) {
		t.Fatalf("buttons = %+v", buttons)
	}
	for i := range buttons {
		if buttons[i] != wantButtons[i] {
			t.Fatalf("button %d = %+v, want %+v", i, buttons[i], wantButtons[i])
		}
	}
}

func TestRenderMessageCardSections(t *testing.T) {
	raw := json.RawMessage(`{"@type":"MessageCard","title":"Alert","sections":[{"activityTitle":"CPU","facts":[{"name":"Host","value":"db-1"}]}]}`)
	text, _, err := renderCard(raw)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if text != "<b>Alert</b>\n<b>CPU</b>\n<b>Host</b> db-1" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRenderFallbacks(t *testing.T) {
	cases := map[string]string{
		`{"summary":"short summary"}`:               "short summary",
		`{"fallbackText":"fallback"}`:               "fallback",
		`{"type":"AdaptiveCard","body":[]}`:         fallbackCardText,
		`{"body":[{"type":"TextBlock","text":""}]}`: fallbackCardText,
	}
	for raw, want := range cases {
		text, _, err := renderCard(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("render %s: %v", raw, err)
		}
		if text != want {
			t.Fatalf("render %s = %q, want %q", raw, text, want)
		}
	}
}

func TestRenderInvalidCard(t *testing.T) {
	if _, _, err := renderCard(json.RawMessage(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object card")
	}
}

func TestRenderTruncatesLongCards(t *testing.T) {
	line := strings.Repeat("a", 1000)
	var body []map[string]string
	for i := 0; i < 10; i++ {
		body = append(body, map[string]string{"type": "TextBlock", "text": line})
	}
	raw, _ := json.Marshal(map[string]any{"body": body})

	text, _, err := renderCard(raw)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(text) > maxMessageChars {
		t.Fatalf("text too long: %d", len(text))
	}
	if strings.Count(text, "\n") != 2 {
		t.Fatalf("expected three whole lines, got %d chars", len(text))
	}
}

func TestInlineKeyboard(t *testing.T) {
	buttons := []transport.Button{
		{Title: "Stop", Command: "stop notifications"},
		{Title: "Too long", Command: strings.Repeat("x", 60)},
		{Title: "Docs", URL: "https://example.com"},
	}
	kb, ok := inlineKeyboard(buttons)
	if !ok {
		t.Fatalf("expected a keyboard")
	}
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(kb.InlineKeyboard))
	}
	if kb.InlineKeyboard[1][0].URL == nil || *kb.InlineKeyboard[1][0].URL != "https://example.com" {
		t.Fatalf("second row should be the link button")
	}

	if _, ok := inlineKeyboard(nil); ok {
		t.Fatalf("no buttons should give no keyboard")
	}
}

func TestDecodeCallback(t *testing.T) {
	cmd, ok := decodeCallback(`{"command":"resume now"}`)
	if !ok || *cmd != "resume now" {
		t.Fatalf("unexpected decode: %v %v", cmd, ok)
	}
	if _, ok := decodeCallback(`{"other":1}`); ok {
		t.Fatalf("payload without command must not decode")
	}
	if _, ok := decodeCallback("legacy-data"); ok {
		t.Fatalf("non-json payload must not decode")
	}
}
