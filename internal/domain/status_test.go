package domain

import (
	"testing"
	"time"
)

func TestEligible(t *testing.T) {
	now := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name string
		st   Status
		want bool
	}{
		{"disabled without snooze", Status{Enabled: false}, false},
		{"disabled with past snooze", Status{Enabled: false, SnoozedUntil: &past}, false},
		{"disabled with future snooze", Status{Enabled: false, SnoozedUntil: &future}, false},
		{"enabled without snooze", Status{Enabled: true}, true},
		{"enabled with future snooze", Status{Enabled: true, SnoozedUntil: &future}, false},
		{"enabled with past snooze", Status{Enabled: true, SnoozedUntil: &past}, true},
		{"enabled with snooze ending now", Status{Enabled: true, SnoozedUntil: &now}, true},
	}
	for _, c := range cases {
		if got := c.st.Eligible(now); got != c.want {
			t.Fatalf("%s: want %v, got %v", c.name, c.want, got)
		}
	}
}

func TestDefaultStatus(t *testing.T) {
	st := DefaultStatus()
	if !st.Enabled || st.SnoozedUntil != nil {
		t.Fatalf("default must be (true, nil), got %+v", st)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Stop   Notifications ": "stop notifications",
		"/status@relay_bot":       "status",
		"/help":                   "help",
		"":                        "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
