package service

import (
	"testing"
	"time"
)

func TestFormatHour(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "2024-02-01T00:00"},
		{time.Date(2024, 2, 1, 13, 59, 59, 999, time.UTC), "2024-02-01T13:00"},
		{time.Date(2024, 12, 31, 23, 5, 0, 0, time.UTC), "2024-12-31T23:00"},
	}
	for _, tt := range tests {
		if got := FormatHour(tt.in); got != tt.want {
			t.Errorf("FormatHour(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHour_UsesLocationOfTime(t *testing.T) {
	athens := time.FixedZone("EET", 2*60*60)
	ts := time.Date(2024, 2, 1, 23, 30, 0, 0, time.UTC).In(athens)
	if got := FormatHour(ts); got != "2024-02-02T01:00" {
		t.Errorf("FormatHour() = %q, want wall-clock hour in the time's zone", got)
	}
}

func TestCurrentHourIndex(t *testing.T) {
	times := []string{"2024-02-01T00:00", "2024-02-01T01:00", "2024-02-01T02:00"}

	tests := []struct {
		name   string
		times  []string
		target string
		want   int
	}{
		{"first", times, "2024-02-01T00:00", 0},
		{"middle", times, "2024-02-01T01:00", 1},
		{"last", times, "2024-02-01T02:00", 2},
		{"case insensitive", []string{"2024-02-01t00:00", "2024-02-01t01:00"}, "2024-02-01T01:00", 1},
		{"absent falls back to 0", times, "2024-02-02T05:00", 0},
		{"empty series", nil, "2024-02-01T00:00", 0},
		{"first match wins", []string{"x", "2024-02-01T01:00", "2024-02-01T01:00"}, "2024-02-01T01:00", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentHourIndex(tt.times, tt.target); got != tt.want {
				t.Errorf("CurrentHourIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}
