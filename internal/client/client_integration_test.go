//go:build integration
// +build integration

package client

import (
	"context"
	"os"
	"testing"
	"time"
)

func liveClient(t *testing.T) *OpenMeteoClient {
	t.Helper()
	if os.Getenv("OPEN_METEO_INTEGRATION") != "1" {
		t.Skip("OPEN_METEO_INTEGRATION not set, skipping live Open-Meteo test")
	}
	c, err := NewOpenMeteoClient(DefaultGeocodingURL, DefaultForecastURL, 10*time.Second)
	if err != nil {
		t.Fatalf("NewOpenMeteoClient() error = %v", err)
	}
	return c
}

func TestOpenMeteoClient_Resolve_Integration(t *testing.T) {
	c := liveClient(t)

	got, err := c.Resolve(context.Background(), "Athens")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) == 0 || len(got) > 10 {
		t.Fatalf("Resolve() returned %d candidates, want 1..10", len(got))
	}
	if got[0].Name != "Athens" {
		t.Errorf("first candidate = %+v, want Athens", got[0])
	}
}

func TestOpenMeteoClient_GetHourly_Integration(t *testing.T) {
	c := liveClient(t)

	series, err := c.GetHourly(context.Background(), 37.98, 23.73)
	if err != nil {
		t.Fatalf("GetHourly() error = %v", err)
	}
	if len(series.Time) < 24 {
		t.Errorf("len(time) = %d, want at least a day of hours", len(series.Time))
	}
	if _, err := time.Parse("2006-01-02T15:04", series.Time[0]); err != nil {
		t.Errorf("time[0] = %q, unexpected format: %v", series.Time[0], err)
	}
	if err := series.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
