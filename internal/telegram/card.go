package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

const (
	maxMessageChars  = 3900
	maxCallbackBytes = 64
	fallbackCardText = "You have a new alert."
)

// card covers the fields of Adaptive Cards and legacy connector MessageCards that
// have a Telegram equivalent. Everything else is ignored.
type card struct {
	Title        string        `json:"title"`
	Text         string        `json:"text"`
	Summary      string        `json:"summary"`
	FallbackText string        `json:"fallbackText"`
	Body         []cardElement `json:"body"`
	Sections     []cardSection `json:"sections"`
	Actions      []cardAction  `json:"actions"`
}

type cardElement struct {
	Type    string        `json:"type"`
	Text    string        `json:"text"`
	Weight  string        `json:"weight"`
	Facts   []cardFact    `json:"facts"`
	Items   []cardElement `json:"items"`
	Columns []struct {
		Items []cardElement `json:"items"`
	} `json:"columns"`
	Actions []cardAction `json:"actions"`
}

type cardSection struct {
	ActivityTitle string     `json:"activityTitle"`
	Title         string     `json:"title"`
	Text          string     `json:"text"`
	Facts         []cardFact `json:"facts"`
}

type cardFact struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type cardAction struct {
	Type  string          `json:"type"`
	Title string          `json:"title"`
	URL   string          `json:"url"`
	Data  json.RawMessage `json:"data"`
}

type commandPayload struct {
	Command *string `json:"command"`
}

// renderCard turns a card into Telegram HTML text plus buttons.
func renderCard(raw json.RawMessage) (string, []transport.Button, error) {
	var c card
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", nil, fmt.Errorf("decode card: %w", err)
	}

	r := &cardRenderer{}
	if c.Title != "" {
		r.line("<b>" + html.EscapeString(c.Title) + "</b>")
	}
	if c.Text != "" {
		r.line(html.EscapeString(c.Text))
	}
	r.elements(c.Body)
	for _, s := range c.Sections {
		if t := firstNonEmpty(s.ActivityTitle, s.Title); t != "" {
			r.line("<b>" + html.EscapeString(t) + "</b>")
		}
		if s.Text != "" {
			r.line(html.EscapeString(s.Text))
		}
		r.facts(s.Facts)
	}
	r.actions(c.Actions)

	if len(r.lines) == 0 {
		r.line(html.EscapeString(firstNonEmpty(c.Summary, c.FallbackText, fallbackCardText)))
	}
	return r.text(), r.buttons, nil
}

type cardRenderer struct {
	lines   []string
	size    int
	buttons []transport.Button
}

// line appends s unless the message would exceed Telegram's limit; lines are never cut in half,
// so HTML tags stay balanced.
func (r *cardRenderer) line(s string) {
	if s == "" || r.size+len(s)+1 > maxMessageChars {
		return
	}
	r.lines = append(r.lines, s)
	r.size += len(s) + 1
}

func (r *cardRenderer) text() string { return strings.Join(r.lines, "\n") }

func (r *cardRenderer) elements(els []cardElement) {
	for _, el := range els {
		switch el.Type {
		case "TextBlock":
			if el.Text == "" {
				continue
			}
			text := html.EscapeString(el.Text)
			if strings.EqualFold(el.Weight, "bolder") {
				text = "<b>" + text + "</b>"
			}
			r.line(text)
		case "FactSet":
			r.facts(el.Facts)
		case "Container":
			r.elements(el.Items)
		case "ColumnSet":
			for _, col := range el.Columns {
				r.elements(col.Items)
			}
		case "ActionSet":
			r.actions(el.Actions)
		}
	}
}

func (r *cardRenderer) facts(facts []cardFact) {
	for _, f := range facts {
		title := firstNonEmpty(f.Title, f.Name)
		if title == "" {
			r.line(html.EscapeString(f.Value))
			continue
		}
		r.line("<b>" + html.EscapeString(title) + "</b> " + html.EscapeString(f.Value))
	}
}

func (r *cardRenderer) actions(actions []cardAction) {
	for _, a := range actions {
		switch a.Type {
		case "Action.Submit", "Action.Execute":
			var p commandPayload
			if err := json.Unmarshal(a.Data, &p); err != nil || p.Command == nil || *p.Command == "" {
				continue
			}
			r.buttons = append(r.buttons, transport.Button{Title: a.Title, Command: *p.Command})
		case "Action.OpenUrl":
			if a.URL != "" {
				r.buttons = append(r.buttons, transport.Button{Title: a.Title, URL: a.URL})
			}
		}
	}
}

// inlineKeyboard lays out one button per row. Command buttons whose payload does not fit
// Telegram's 64-byte callback data are dropped.
func inlineKeyboard(buttons []transport.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range buttons {
		title := firstNonEmpty(b.Title, b.Command, b.URL)
		switch {
		case b.URL != "":
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(title, b.URL)))
		case b.Command != "":
			data, err := encodeCallback(b.Command)
			if err != nil {
				continue
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(title, data)))
		}
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func encodeCallback(command string) (string, error) {
	b, err := json.Marshal(commandPayload{Command: &command})
	if err != nil {
		return "", err
	}
	if len(b) > maxCallbackBytes {
		return "", errors.New("callback data too long")
	}
	return string(b), nil
}

// decodeCallback extracts the command of a button press; ok is false for foreign payloads.
func decodeCallback(data string) (*string, bool) {
	var p commandPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil || p.Command == nil {
		return nil, false
	}
	return p.Command, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
