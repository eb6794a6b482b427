// Package period maps order timestamps onto Monday-anchored weekly
// billing periods. Periods are derived, never stored: the Monday date
// key is the identity, and every helper here is a pure function.
package period

import (
	"sort"
	"time"
)

// KeyLayout is the date layout of a period key.
const KeyLayout = "2006-01-02"

// Key identifies a billing period by the calendar date of its Monday.
type Key string

// Of returns the key of the 7-day window containing t, in t's own
// location. A timestamp exactly at Monday 00:00 belongs to that week.
// The zero time yields the zero Key; callers treat such orders as a
// data-quality error, not a week of their own.
func Of(t time.Time) Key {
	if t.IsZero() {
		return ""
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -offset)
	return Key(monday.Format(KeyLayout))
}

// Touched returns the distinct periods present in the given timestamps,
// ascending by start date. Zero timestamps are skipped.
func Touched(times []time.Time) []Key {
	seen := make(map[Key]struct{}, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		seen[Of(t)] = struct{}{}
	}

	keys := make([]Key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Valid reports whether k parses as a Monday date key.
func (k Key) Valid() bool {
	t, err := time.Parse(KeyLayout, string(k))
	if err != nil {
		return false
	}
	return t.Weekday() == time.Monday
}

// Start returns Monday 00:00 of the period in the local calendar.
func (k Key) Start() time.Time {
	t, err := time.ParseInLocation(KeyLayout, string(k), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// End returns the exclusive end of the period: the following Monday 00:00.
func (k Key) End() time.Time {
	start := k.Start()
	if start.IsZero() {
		return time.Time{}
	}
	return start.AddDate(0, 0, 7)
}

// Next returns the key of the following week.
func (k Key) Next() Key {
	start := k.Start()
	if start.IsZero() {
		return ""
	}
	return Key(start.AddDate(0, 0, 7).Format(KeyLayout))
}

// DaysSinceEnd returns whole calendar days elapsed between the period's
// end and now. Negative while the period is still open.
func (k Key) DaysSinceEnd(now time.Time) int {
	end := k.End()
	if end.IsZero() {
		return 0
	}
	return int(now.Sub(end).Hours() / 24)
}
