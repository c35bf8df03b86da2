package checkin

import (
	"encoding/json"
	"testing"
	"time"
)

var evalNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func seenAgo(d time.Duration) *time.Time {
	t := evalNow.Add(-d)
	return &t
}

func TestIsOverdue_DisabledAlwaysFalse(t *testing.T) {
	c := Cadence{Interval: IntervalDays, Every: 1}
	if IsOverdue(nil, c, false, evalNow) {
		t.Error("disabled reminders must never report overdue, even with no lastSeen")
	}
	if IsOverdue(seenAgo(400*24*time.Hour), c, false, evalNow) {
		t.Error("disabled reminders must never report overdue, even long past threshold")
	}
}

func TestIsOverdue_NoCadenceAlwaysFalse(t *testing.T) {
	if IsOverdue(nil, None, true, evalNow) {
		t.Error("the none cadence must never report overdue")
	}
}

func TestIsOverdue_NeverSeen(t *testing.T) {
	c := Cadence{Interval: IntervalMonths, Every: 6}
	if !IsOverdue(nil, c, true, evalNow) {
		t.Error("never-seen friends are overdue once a cadence is active")
	}
}

func TestIsOverdue_InclusiveBoundary(t *testing.T) {
	c := Cadence{Interval: IntervalDays, Every: 1}
	if !IsOverdue(seenAgo(24*time.Hour), c, true, evalNow) {
		t.Error("exactly at threshold must count as overdue")
	}
	if IsOverdue(seenAgo(24*time.Hour-time.Millisecond), c, true, evalNow) {
		t.Error("one millisecond under threshold must not be overdue")
	}
}

func TestIsOverdue_BiweeklyScenarios(t *testing.T) {
	c := Cadence{Interval: IntervalWeeks, Every: 2}

	if IsOverdue(seenAgo(13*24*time.Hour), c, true, evalNow) {
		t.Error("13 days ago is under the 14-day threshold")
	}
	if !IsOverdue(seenAgo(15*24*time.Hour), c, true, evalNow) {
		t.Error("15 days ago is past the 14-day threshold")
	}

	// The legacy "biweekly" label must behave identically.
	legacy := Resolve(json.RawMessage(`"biweekly"`))
	if legacy != c {
		t.Fatalf("biweekly resolved to %+v, want %+v", legacy, c)
	}
	if IsOverdue(seenAgo(13*24*time.Hour), legacy, true, evalNow) {
		t.Error("legacy biweekly: 13 days ago must not be overdue")
	}
	if !IsOverdue(seenAgo(15*24*time.Hour), legacy, true, evalNow) {
		t.Error("legacy biweekly: 15 days ago must be overdue")
	}
}

func TestThreshold_UnitSizes(t *testing.T) {
	cases := []struct {
		cadence Cadence
		want    time.Duration
	}{
		{Cadence{Interval: IntervalSeconds, Every: 30}, 30 * time.Second},
		{Cadence{Interval: IntervalDays, Every: 2}, 48 * time.Hour},
		{Cadence{Interval: IntervalWeeks, Every: 1}, 7 * 24 * time.Hour},
		// Months use the fixed 30-day approximation.
		{Cadence{Interval: IntervalMonths, Every: 1}, 30 * 24 * time.Hour},
		{None, 0},
	}
	for _, tc := range cases {
		if got := Threshold(tc.cadence); got != tc.want {
			t.Errorf("Threshold(%+v) = %v, want %v", tc.cadence, got, tc.want)
		}
	}
}

func TestIsOverdueISO_FailsClosed(t *testing.T) {
	c := Cadence{Interval: IntervalWeeks, Every: 1}

	if !IsOverdueISO("not-a-timestamp", c, true, evalNow) {
		t.Error("unparseable lastSeen must fail closed and report overdue")
	}
	if !IsOverdueISO("", c, true, evalNow) {
		t.Error("empty lastSeen must report overdue")
	}
	if IsOverdueISO(evalNow.Add(-time.Hour).Format(time.RFC3339), c, true, evalNow) {
		t.Error("a friend seen an hour ago is not overdue on a weekly cadence")
	}
}

func TestParseLastSeen(t *testing.T) {
	if got := ParseLastSeen(""); got != nil {
		t.Errorf("empty string: got %v, want nil", got)
	}
	if got := ParseLastSeen("yesterday"); got != nil {
		t.Errorf("malformed string: got %v, want nil", got)
	}
	want := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	got := ParseLastSeen("2024-03-01T09:30:00Z")
	if got == nil || !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
