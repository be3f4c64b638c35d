package services

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeDate strips the time-of-day so two submissions on the same
// calendar day always land on the same stored value.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthLabels enumerates every calendar month a batch spans as
// "<MonthName> <Year>" labels. Granularity is whole months: a batch
// ending on the 2nd still bills that month.
func MonthLabels(start, end time.Time) []string {
	var labels []string
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = NormalizeDate(end)
	for !cur.After(end) {
		labels = append(labels, fmt.Sprintf("%s %d", cur.Month().String(), cur.Year()))
		cur = cur.AddDate(0, 1, 0)
	}
	return labels
}

// MonthStart parses a "<MonthName> <Year>" label back to the first day of
// that month. Used to validate manually created fee months against the
// batch date range.
func MonthStart(label string) (time.Time, error) {
	return time.Parse("January 2006", strings.TrimSpace(label))
}

// SessionDates projects the expected session grid: every date in
// [start, min(end, today)] whose weekday is in days. Read-only helper, a
// session only exists once attendance is recorded for it. A start date in
// the future yields nothing.
func SessionDates(start, end time.Time, days []string, today time.Time) []time.Time {
	wanted := make(map[string]bool, len(days))
	for _, d := range days {
		wanted[strings.ToLower(strings.TrimSpace(d))] = true
	}

	last := NormalizeDate(end)
	if t := NormalizeDate(today); t.Before(last) {
		last = t
	}

	var dates []time.Time
	for d := NormalizeDate(start); !d.After(last); d = d.AddDate(0, 0, 1) {
		if wanted[strings.ToLower(d.Weekday().String())] {
			dates = append(dates, d)
		}
	}
	return dates
}
