// Package timeleft renders the time until a scheduled item as a short
// human label ("1 hour 30 minutes left", "Overdue").
//
// The decomposition is deliberately calendar-naive: a day is 24 hours, a
// week is 7 days, a month is 4 weeks. Reminder labels for appointments a
// few weeks out don't need astronomical accuracy, they need to match what
// the care team reads over the phone.
package timeleft

import (
	"fmt"
	"strings"
	"time"
)

// Overdue is returned for any target at or before the reference time.
const Overdue = "Overdue"

// underMinute is returned for positive durations shorter than a minute.
// Every decomposed component is zero there, and a bare "left" reads like
// a rendering bug.
const underMinute = "under a minute left"

// Until returns the label for target relative to now.
func Until(target, now time.Time) string {
	diff := target.Sub(now)
	if diff <= 0 {
		return Overdue
	}

	totalMinutes := int(diff / time.Minute)
	totalHours := totalMinutes / 60
	minutes := totalMinutes % 60

	hours := totalHours
	days := 0
	if totalHours >= 24 {
		days = totalHours / 24
		hours = totalHours % 24
	}

	weeks := 0
	if days >= 7 {
		weeks = days / 7
		days = days % 7
	}

	months := 0
	if weeks >= 4 {
		months = weeks / 4
		weeks = weeks % 4
	}

	var parts []string
	appendPart := func(n int, unit string) {
		if n == 0 {
			return
		}
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", unit))
			return
		}
		parts = append(parts, fmt.Sprintf("%d %ss", n, unit))
	}

	appendPart(months, "month")
	appendPart(weeks, "week")
	appendPart(days, "day")
	appendPart(hours, "hour")
	appendPart(minutes, "minute")

	if len(parts) == 0 {
		return underMinute
	}
	return strings.Join(parts, " ") + " left"
}

// UntilNow is Until with the current wall clock as the reference.
func UntilNow(target time.Time) string {
	return Until(target, time.Now())
}
