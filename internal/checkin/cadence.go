package checkin

import (
	"encoding/json"
	"math"
)

// Interval is the unit of a check-in cadence.
type Interval string

const (
	IntervalNone    Interval = "none"
	IntervalSeconds Interval = "seconds"
	IntervalDays    Interval = "days"
	IntervalWeeks   Interval = "weeks"
	IntervalMonths  Interval = "months"
)

// Cadence is the canonical check-in frequency: "every N units".
// Every is always >= 1 for recurring intervals and omitted for none.
type Cadence struct {
	Interval Interval `json:"interval"`
	Every    int      `json:"every,omitempty"`
}

// None is the sentinel cadence meaning "no recurring check-in".
var None = Cadence{Interval: IntervalNone}

// legacyLabels maps the historical compact enum to structured cadences.
var legacyLabels = map[string]Cadence{
	"daily":    {Interval: IntervalDays, Every: 1},
	"weekly":   {Interval: IntervalWeeks, Every: 1},
	"biweekly": {Interval: IntervalWeeks, Every: 2},
	"monthly":  {Interval: IntervalMonths, Every: 1},
}

func validInterval(i Interval) bool {
	switch i {
	case IntervalNone, IntervalSeconds, IntervalDays, IntervalWeeks, IntervalMonths:
		return true
	}
	return false
}

// rawCadence is the wire shape of a structured checkInFrequency value.
// Every is a float because older clients wrote non-integer values.
type rawCadence struct {
	Interval string   `json:"interval"`
	Every    *float64 `json:"every"`
}

// Resolve normalizes a stored checkInFrequency value into a canonical Cadence.
// The value has changed shape across versions of the app: it may be absent,
// null, a legacy label string ("daily", "weekly", "biweekly", "monthly") or a
// structured {interval, every} object. Malformed input resolves to None, never
// to an error. Resolving an already-canonical cadence returns it unchanged
// apart from the Every clamp, so Resolve is idempotent.
func Resolve(raw json.RawMessage) Cadence {
	if len(raw) == 0 || string(raw) == "null" {
		return None
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		if c, ok := legacyLabels[label]; ok {
			return c
		}
		return None
	}

	var obj rawCadence
	if err := json.Unmarshal(raw, &obj); err != nil {
		return None
	}
	return Canonical(Interval(obj.Interval), obj.Every)
}

// Canonical clamps an interval/multiplier pair into a valid Cadence.
// Unknown intervals collapse to None; the multiplier defaults to 1 and is
// floored with a lower bound of 1.
func Canonical(interval Interval, every *float64) Cadence {
	if !validInterval(interval) || interval == IntervalNone {
		return None
	}
	n := 1
	if every != nil {
		n = int(math.Floor(*every))
		if n < 1 {
			n = 1
		}
	}
	return Cadence{Interval: interval, Every: n}
}

// ClampEvery floors a user-supplied multiplier to the valid range.
func ClampEvery(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
