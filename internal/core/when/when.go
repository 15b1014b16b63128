// Package when extracts calendar dates and clock times from loosely spoken
// text. Parsing never fails: anything that cannot be read falls back to the
// supplied notion of "now".
package when

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock returns the current time. Callers inject it so parsing stays
// deterministic under test.
type Clock func() time.Time

const (
	// DateLayout is the ISO calendar date format used for stored tasks.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour clock format used for stored tasks.
	TimeLayout = "15:04"

	spokenDateLayout = "Monday, January 2, 2006"
	spokenTimeLayout = "3:04 PM"
)

type monthName struct {
	name  string
	month string
}

// months is scanned in order and the first substring hit wins, so every full
// name sits ahead of its abbreviation.
var months = []monthName{
	{"january", "01"}, {"jan", "01"},
	{"february", "02"}, {"feb", "02"},
	{"march", "03"}, {"mar", "03"},
	{"april", "04"}, {"apr", "04"},
	{"may", "05"},
	{"june", "06"}, {"jun", "06"},
	{"july", "07"}, {"jul", "07"},
	{"august", "08"}, {"aug", "08"},
	{"september", "09"}, {"sep", "09"},
	{"october", "10"}, {"oct", "10"},
	{"november", "11"}, {"nov", "11"},
	{"december", "12"}, {"dec", "12"},
}

var (
	dayPattern    = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\b`)
	yearPattern   = regexp.MustCompile(`\b(20\d{2})\b`)
	hourPattern   = regexp.MustCompile(`\b(\d{1,2})\b`)
	minutePattern = regexp.MustCompile(`:(\d{1,2})`)
)

// ParseDate reads a month name, a day number and an optional 20xx year from
// text and returns an ISO date. If the month or the day is missing, or the
// pieces do not form a real calendar date, today's date is returned.
func ParseDate(text string, now time.Time) string {
	text = strings.ToLower(text)

	month := monthIn(text)

	var day string
	if m := dayPattern.FindStringSubmatch(text); m != nil {
		d, _ := strconv.Atoi(m[1])
		day = fmt.Sprintf("%02d", d)
	}

	year := strconv.Itoa(now.Year())
	if m := yearPattern.FindStringSubmatch(text); m != nil {
		year = m[1]
	}

	if month == "" || day == "" {
		return Today(now)
	}

	iso := year + "-" + month + "-" + day
	if _, err := time.Parse(DateLayout, iso); err != nil {
		return Today(now)
	}

	return iso
}

// ParseTime reads an hour, an optional ":MM" and an optional am/pm marker
// from text and returns a 24-hour "HH:MM" time. A missing or out of range
// hour falls back to the current hour; missing minutes default to "00".
func ParseTime(text string, now time.Time) string {
	text = strings.ToLower(text)

	hour := now.Hour()
	if m := hourPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		switch {
		case strings.Contains(text, "pm") && h < 12:
			h += 12
		case strings.Contains(text, "am") && h == 12:
			h = 0
		}
		if h <= 23 {
			hour = h
		}
	}

	minute := 0
	if m := minutePattern.FindStringSubmatch(text); m != nil {
		if v, _ := strconv.Atoi(m[1]); v <= 59 {
			minute = v
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// MentionsMonth reports whether text names a month in full or abbreviated.
func MentionsMonth(text string) bool {
	return monthIn(strings.ToLower(text)) != ""
}

// Today returns now's calendar date in ISO form.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// Tomorrow returns the calendar date after now in ISO form.
func Tomorrow(now time.Time) string {
	return now.AddDate(0, 0, 1).Format(DateLayout)
}

// FormatDate renders an ISO date the way the assistant speaks it, e.g.
// "Monday, March 3, 2025". Unparseable input is returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse(DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(spokenDateLayout)
}

// FormatTime renders a 24-hour "HH:MM" time on a 12-hour clock, e.g.
// "5:00 PM". Unparseable input is returned unchanged.
func FormatTime(hhmm string) string {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format(spokenTimeLayout)
}

func monthIn(text string) string {
	for _, m := range months {
		if strings.Contains(text, m.name) {
			return m.month
		}
	}
	return ""
}
