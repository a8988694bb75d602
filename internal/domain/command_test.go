package domain

import (
	"testing"
	"time"
)

func TestInterpret_KnownCommands(t *testing.T) {
	cases := []struct {
		in      string
		enabled bool
		snooze  time.Duration
		reply   string
	}{
		{"stop notifications", false, 0, ReplyStopped},
		{"  Start Notifications ", true, 0, ReplyStarted},
		{"SNOOZE FOR 24 HOURS", true, 24 * time.Hour, ReplySnooze24},
		{"snooze   for 1  hour", true, time.Hour, ReplySnooze1},
		{"resume now", true, 0, ReplyResumed},
		{"/stop@relay_bot", false, 0, ReplyStopped},
	}
	for _, c := range cases {
		got := Interpret(c.in)
		if got.Action != ActionSet {
			t.Fatalf("%q: want ActionSet, got %v", c.in, got.Action)
		}
		if got.Enabled != c.enabled || got.Snooze != c.snooze || got.Reply != c.reply {
			t.Fatalf("%q: unexpected intent %+v", c.in, got)
		}
	}
}

func TestInterpret_EmptyAndUnknown(t *testing.T) {
	if got := Interpret("   "); got.Action != ActionNone || got.Reply != ReplyEmpty {
		t.Fatalf("empty input: got %+v", got)
	}
	got := Interpret("make coffee")
	if got.Action != ActionNone || got.Reply != ReplyUnknown {
		t.Fatalf("unknown input: got %+v", got)
	}
	if ReplyEmpty == ReplyUnknown {
		t.Fatal("empty and unknown replies must differ")
	}
}

func TestInterpret_StopIsIdempotentAndClearsSnooze(t *testing.T) {
	now := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	first := Interpret(CmdStop).Apply(now)
	second := Interpret(CmdStop).Apply(now.Add(time.Minute))
	if first.Enabled || first.SnoozedUntil != nil {
		t.Fatalf("stop must disable and clear snooze, got %+v", first)
	}
	if first.Enabled != second.Enabled || second.SnoozedUntil != nil {
		t.Fatalf("stop applied twice differs: %+v vs %+v", first, second)
	}
}

func TestInterpret_SnoozeOneHourBoundary(t *testing.T) {
	now := time.Date(2025, 5, 5, 10, 0, 0, 123, time.UTC)
	st := Interpret(CmdSnooze1).Apply(now)
	if st.SnoozedUntil == nil || !st.SnoozedUntil.Equal(now.Add(time.Hour)) {
		t.Fatalf("want snooze until %v, got %v", now.Add(time.Hour), st.SnoozedUntil)
	}
	if st.Eligible(now.Add(time.Hour - time.Nanosecond)) {
		t.Fatal("must not be eligible before the snooze ends")
	}
	if !st.Eligible(now.Add(time.Hour)) {
		t.Fatal("must be eligible exactly when the snooze ends")
	}
}

func TestInterpret_StatusAndHelp(t *testing.T) {
	if got := Interpret("/status"); got.Action != ActionStatus {
		t.Fatalf("status: got %+v", got)
	}
	if got := Interpret("help"); got.Action != ActionNone || got.Reply == "" || got.Reply == ReplyUnknown {
		t.Fatalf("help: got %+v", got)
	}
}

func TestDescribeStatus(t *testing.T) {
	now := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	until := now.Add(2 * time.Hour)
	if got := DescribeStatus(Status{Enabled: false}, now, "UTC"); got != statusDisabled {
		t.Fatalf("disabled: %q", got)
	}
	if got := DescribeStatus(Status{Enabled: true, SnoozedUntil: &until}, now, "UTC"); got != "💤 Notifications are snoozed until 2025-05-05 12:00 UTC." {
		t.Fatalf("snoozed: %q", got)
	}
	if got := DescribeStatus(DefaultStatus(), now, "UTC"); got != statusEnabled {
		t.Fatalf("enabled: %q", got)
	}
}
