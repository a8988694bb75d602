package domain

import (
	"fmt"
	"time"
)

// Action is the kind of state change a command asks for.
type Action int

const (
	ActionNone   Action = iota // no state change, reply only
	ActionSet                  // overwrite enabled + snooze
	ActionStatus               // read-only, reply rendered from current state
)

// Command texts. Button payloads carry the same strings in their "command" field.
const (
	CmdStop     = "stop notifications"
	CmdStart    = "start notifications"
	CmdSnooze24 = "snooze for 24 hours"
	CmdSnooze1  = "snooze for 1 hour"
	CmdResume   = "resume now"
	CmdStatus   = "status"
	CmdHelp     = "help"
)

// Replies.
const (
	ReplyStopped   = "Notifications have been stopped. You won't receive further alerts until resumed."
	ReplyStarted   = "Notifications have been resumed."
	ReplySnooze24  = "Notifications snoozed for 24 hours."
	ReplySnooze1   = "Notifications snoozed for 1 hour."
	ReplyResumed   = "Notifications resumed immediately."
	ReplyEmpty     = "Please enter a command like " + commandList + "."
	ReplyUnknown   = "Unknown command. Please use " + commandList + "."
	commandList    = "'stop notifications', 'start notifications', 'snooze for 24 hours', 'snooze for 1 hour', or 'resume now'"
	statusEnabled  = "✅ Notifications are on."
	statusDisabled = "⏸ Notifications are stopped."
	statusSnoozed  = "💤 Notifications are snoozed until %s."
)

// Intent is the outcome of interpreting one command: what to write and what to say.
// For ActionSet, Enabled and Snooze describe the new state; Snooze == 0 clears the snooze.
type Intent struct {
	Command string
	Action  Action
	Enabled bool
	Snooze  time.Duration
	Reply   string
}

type commandDef struct {
	text    string
	aliases []string
	intent  Intent
}

var commands = []commandDef{
	{text: CmdStop, aliases: []string{"stop"}, intent: Intent{Action: ActionSet, Enabled: false, Reply: ReplyStopped}},
	{text: CmdStart, aliases: []string{"start"}, intent: Intent{Action: ActionSet, Enabled: true, Reply: ReplyStarted}},
	{text: CmdSnooze24, aliases: []string{"snooze24"}, intent: Intent{Action: ActionSet, Enabled: true, Snooze: 24 * time.Hour, Reply: ReplySnooze24}},
	{text: CmdSnooze1, aliases: []string{"snooze1"}, intent: Intent{Action: ActionSet, Enabled: true, Snooze: time.Hour, Reply: ReplySnooze1}},
	{text: CmdResume, aliases: []string{"resume"}, intent: Intent{Action: ActionSet, Enabled: true, Reply: ReplyResumed}},
	{text: CmdStatus, intent: Intent{Action: ActionStatus}},
	{text: CmdHelp, intent: Intent{Action: ActionNone, Reply: "Commands: " + commandList + ". Send 'status' to see your current settings."}},
}

var commandIndex = func() map[string]commandDef {
	m := make(map[string]commandDef, len(commands)*2)
	for _, c := range commands {
		c.intent.Command = c.text
		m[c.text] = c
		for _, a := range c.aliases {
			m[a] = c
		}
	}
	return m
}()

// Interpret maps a command string to an Intent. It is pure: the same input always yields the same Intent.
// Input is normalized first, so callers may pass raw text or a raw button payload command.
func Interpret(input string) Intent {
	cmd := Normalize(input)
	if cmd == "" {
		return Intent{Action: ActionNone, Reply: ReplyEmpty}
	}
	c, ok := commandIndex[cmd]
	if !ok {
		return Intent{Command: cmd, Action: ActionNone, Reply: ReplyUnknown}
	}
	return c.intent
}

// Commands lists the canonical command texts in display order.
func Commands() []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, c.text)
	}
	return out
}

// Apply returns the status an ActionSet intent produces at now.
func (i Intent) Apply(now time.Time) Status {
	st := Status{Enabled: i.Enabled}
	if i.Snooze > 0 {
		until := now.UTC().Add(i.Snooze)
		st.SnoozedUntil = &until
	}
	return st
}

// DescribeStatus renders a status reply. Snooze expiry is shown in tz.
func DescribeStatus(st Status, now time.Time, tz string) string {
	switch {
	case !st.Enabled:
		return statusDisabled
	case st.Snoozed(now):
		return fmt.Sprintf(statusSnoozed, LocalizeTime(*st.SnoozedUntil, tz))
	default:
		return statusEnabled
	}
}
