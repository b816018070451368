// Package assistant implements the conversational layer: a rule-based
// calendar command interpreter that runs ahead of the generative model, and a
// deterministic fallback for when that model is unavailable.
package assistant

import (
	"strings"
	"time"
)

// Resolution is a resolved temporal expression. HasTime distinguishes a full
// instant from a bare calendar day.
type Resolution struct {
	Time    time.Time
	HasTime bool
}

// timeLayouts accepted for bare 12-hour clock input. Input is normalized to
// lower case upstream, so the lowercase marker layout comes first.
var timeLayouts = []string{"3:04 pm", "3:04 PM"}

// ResolveDatetime parses a free-text temporal expression relative to now.
// Recognized are the literal phrases "today", "tomorrow" and "next week", a
// strict YYYY-MM-DD date, and a 12-hour clock time which resolves onto the
// current date. Anything else returns ok=false; unparseable input is a user
// mistake, not a fault. All values are server-local wall-clock time.
func ResolveDatetime(text string, now time.Time) (Resolution, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	day := func(offset int) Resolution {
		d := now.AddDate(0, 0, offset)
		return Resolution{Time: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())}
	}

	switch text {
	case "today":
		return day(0), true
	case "tomorrow":
		return day(1), true
	case "next week":
		return day(7), true
	}

	if t, err := time.ParseInLocation("2006-01-02", text, now.Location()); err == nil {
		return Resolution{Time: t}, true
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			resolved := time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), 0, 0, now.Location())
			return Resolution{Time: resolved, HasTime: true}, true
		}
	}

	return Resolution{}, false
}
