package period

import (
	"testing"
	"time"
)

func TestOfMondayBoundary(t *testing.T) {
	// 2025-06-02 is a Monday.
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if got := Of(monday); got != Key("2025-06-02") {
		t.Fatalf("expected Monday 00:00 to open its own week, got %s", got)
	}

	sundayNight := time.Date(2025, 6, 8, 23, 59, 59, 0, time.UTC)
	if got := Of(sundayNight); got != Key("2025-06-02") {
		t.Fatalf("expected Sunday night to close the same week, got %s", got)
	}

	nextMonday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	if got := Of(nextMonday); got != Key("2025-06-09") {
		t.Fatalf("expected next Monday to start a new week, got %s", got)
	}
}

func TestOfIsTotalAndNonOverlapping(t *testing.T) {
	// Walk an hour at a time across four weeks; every timestamp must map
	// to exactly one period and consecutive periods must abut.
	cursor := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)
	end := cursor.AddDate(0, 0, 28)
	var last Key
	for cursor.Before(end) {
		k := Of(cursor)
		if k == "" {
			t.Fatalf("no period for %s", cursor)
		}
		if !k.Valid() {
			t.Fatalf("key %s is not a Monday date", k)
		}
		if last != "" && k != last && k != last.Next() {
			t.Fatalf("period jumped from %s to %s", last, k)
		}
		last = k
		cursor = cursor.Add(time.Hour)
	}
}

func TestOfZeroTime(t *testing.T) {
	if got := Of(time.Time{}); got != "" {
		t.Fatalf("expected zero time to produce zero key, got %s", got)
	}
}

func TestTouchedSortedDistinct(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC), // week of 06-09
		time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),   // week of 06-02
		time.Date(2025, 6, 4, 20, 0, 0, 0, time.UTC),  // week of 06-02
		{}, // malformed, skipped
		time.Date(2025, 5, 27, 8, 0, 0, 0, time.UTC), // week of 05-26
	}

	keys := Touched(times)
	want := []Key{"2025-05-26", "2025-06-02", "2025-06-09"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d periods, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestDaysSinceEnd(t *testing.T) {
	k := Key("2025-06-02") // ends 2025-06-09 00:00 exclusive

	during := time.Date(2025, 6, 5, 12, 0, 0, 0, time.Local)
	if d := k.DaysSinceEnd(during); d >= 0 {
		t.Fatalf("expected negative days while period open, got %d", d)
	}

	tenDaysAfter := k.End().AddDate(0, 0, 10)
	if d := k.DaysSinceEnd(tenDaysAfter); d != 10 {
		t.Fatalf("expected 10 days since end, got %d", d)
	}
}

func TestStartEndWindow(t *testing.T) {
	k := Key("2025-06-02")
	if !k.End().Equal(k.Start().AddDate(0, 0, 7)) {
		t.Fatalf("period window must span exactly 7 days")
	}
	if k.Next() != Key("2025-06-09") {
		t.Fatalf("expected next key 2025-06-09, got %s", k.Next())
	}
}
