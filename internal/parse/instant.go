package parse

import (
	"strings"
	"time"
)

// Layouts accepted for incoming timestamps. RFC3339 is what the API
// documents; the rest cover legacy records imported from the previous
// system, which stored local wall-clock strings without an offset.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Instant parses a timestamp string, trying each known layout in order.
// It is fail-soft: empty or unparsable input yields nil rather than an
// error, so malformed legacy data degrades to "absent" instead of
// crashing status derivation.
func Instant(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// InstantOr parses a timestamp string, falling back to the given value
// when the input is absent or malformed.
func InstantOr(s string, fallback time.Time) time.Time {
	if t := Instant(s); t != nil {
		return *t
	}
	return fallback
}
