package util

import (
	"testing"
	"time"
)

func TestParseISODate(t *testing.T) {
	got, ok := ParseISODate("2024-06-30")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseISODateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2024-6-30", "06/30/2024", "not-a-date"} {
		if _, ok := ParseISODate(s); ok {
			t.Fatalf("expected %q to fail", s)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-01-01", "2024-03-31", 90},
		{"2023-01-01", "2023-12-31", 364},
		{"2024-01-01", "2024-12-31", 365}, // leap year
		{"2024-06-30", "2024-06-30", 0},
		{"2024-06-30", "2024-03-31", -91},
	}
	for _, c := range cases {
		got, ok := DaysBetween(c.start, c.end)
		if !ok {
			t.Fatalf("expected ok for %s..%s", c.start, c.end)
		}
		if got != c.want {
			t.Fatalf("%s..%s: got %d want %d", c.start, c.end, got, c.want)
		}
	}
}

func TestDaysBetweenBadInput(t *testing.T) {
	if _, ok := DaysBetween("", "2024-06-30"); ok {
		t.Fatalf("expected not ok")
	}
	if _, ok := DaysBetween("2024-06-30", "soon"); ok {
		t.Fatalf("expected not ok")
	}
}

func TestFormatISODate(t *testing.T) {
	got := FormatISODate(time.Date(2024, 3, 5, 15, 4, 5, 0, time.UTC))
	if got != "2024-03-05" {
		t.Fatalf("unexpected format %q", got)
	}
}
