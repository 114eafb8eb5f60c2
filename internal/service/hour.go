package service

import (
	"strings"
	"time"
)

// FormatHour renders t in the forecast's hourly timestamp form, e.g.
// "2024-02-01T13:00". Minutes are always zero.
func FormatHour(t time.Time) string {
	return t.Format("2006-01-02T15") + ":00"
}

// CurrentHourIndex returns the position of target in times, compared
// case-insensitively, or 0 when target is absent.
func CurrentHourIndex(times []string, target string) int {
	i, _ := findHour(times, target)
	return i
}

func findHour(times []string, target string) (int, bool) {
	for i, ts := range times {
		if strings.EqualFold(ts, target) {
			return i, true
		}
	}
	return 0, false
}
