package domain

import (
	"strings"
	"time"
)

// Normalize lowercases a command, trims it and collapses inner whitespace.
// A leading slash and a Telegram "@botname" suffix are dropped so "/Stop@relay_bot" and "stop" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "/")
	if i := strings.IndexByte(s, '@'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		s = s[:i] + cutToSpace(s[i:])
	}
	return strings.Join(strings.Fields(s), " ")
}

// cutToSpace drops everything up to the first whitespace in s.
func cutToSpace(s string) string {
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[i:]
	}
	return ""
}

// ValidateTZ checks that the tz is a valid IANA location.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// LocalizeTime formats t in the given timezone as "2006-01-02 15:04 MST".
// An unknown tz falls back to UTC.
func LocalizeTime(t time.Time, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04 MST")
}
