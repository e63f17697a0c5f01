package timeleft

import (
	"strings"
	"testing"
	"time"
)

var ref = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestUntilOverdue(t *testing.T) {
	cases := []time.Duration{
		0,
		-time.Second,
		-time.Minute,
		-48 * time.Hour,
	}
	for _, d := range cases {
		got := Until(ref.Add(d), ref)
		if got != Overdue {
			t.Errorf("Until(ref%+v) = %q, want %q", d, got, Overdue)
		}
	}
}

func TestUntilNeverOverdueForFutureTargets(t *testing.T) {
	durations := []time.Duration{
		time.Second,
		time.Minute,
		90 * time.Minute,
		time.Hour,
		25 * time.Hour,
		8 * 24 * time.Hour,
		40 * 24 * time.Hour,
	}
	for _, d := range durations {
		got := Until(ref.Add(d), ref)
		if got == Overdue {
			t.Errorf("Until(ref+%v) = %q, future target must never be overdue", d, got)
		}
		if !strings.HasSuffix(got, " left") {
			t.Errorf("Until(ref+%v) = %q, want ' left' suffix", d, got)
		}
	}
}

func TestUntilComponents(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "1 hour 30 minutes left"},
		{time.Minute, "1 minute left"},
		{2 * time.Minute, "2 minutes left"},
		{time.Hour, "1 hour left"},
		{24 * time.Hour, "1 day left"},
		{25 * time.Hour, "1 day 1 hour left"},
		{7 * 24 * time.Hour, "1 week left"},
		{8 * 24 * time.Hour, "1 week 1 day left"},
		// 4 weeks roll over into a month.
		{28 * 24 * time.Hour, "1 month left"},
		{36 * 24 * time.Hour, "1 month 1 week 1 day left"},
		{56 * 24 * time.Hour, "2 months left"},
		// Zero components are omitted entirely.
		{24*time.Hour + 5*time.Minute, "1 day 5 minutes left"},
	}
	for _, tt := range tests {
		got := Until(ref.Add(tt.d), ref)
		if got != tt.want {
			t.Errorf("Until(ref+%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestUntilComponentOrder(t *testing.T) {
	// months, weeks, days, hours, minutes - always in that order.
	d := 36*24*time.Hour + 5*time.Hour + 42*time.Minute
	got := Until(ref.Add(d), ref)
	order := []string{"month", "week", "day", "hour", "minute"}
	last := -1
	for _, unit := range order {
		idx := strings.Index(got, unit)
		if idx == -1 {
			t.Fatalf("Until(ref+%v) = %q, missing %q component", d, got, unit)
		}
		if idx < last {
			t.Fatalf("Until(ref+%v) = %q, %q out of order", d, got, unit)
		}
		last = idx
	}
}

func TestUntilSubMinute(t *testing.T) {
	for _, d := range []time.Duration{time.Nanosecond, time.Second, 59 * time.Second} {
		got := Until(ref.Add(d), ref)
		if got != "under a minute left" {
			t.Errorf("Until(ref+%v) = %q, want %q", d, got, "under a minute left")
		}
	}
}

func TestUntilSecondsTruncateToMinutes(t *testing.T) {
	got := Until(ref.Add(90*time.Second), ref)
	if got != "1 minute left" {
		t.Errorf("Until(ref+90s) = %q, want %q", got, "1 minute left")
	}
}
