package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/current-weather-service/internal/config"
	"github.com/kjstillabower/current-weather-service/internal/models"
)

// fakeOpenMeteo serves one geocoding hit and a forecast whose every hour
// carries the same values, so the current-hour pick does not matter.
func fakeOpenMeteo(t *testing.T, geocodeStatus int) *config.Config {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Nowhereville" {
			fmt.Fprint(w, `{}`)
			return
		}
		w.WriteHeader(geocodeStatus)
		fmt.Fprint(w, `{"results":[{"name":"Athens","latitude":37.98,"longitude":23.73}]}`)
	})
	mux.HandleFunc("/v1/dwd-icon", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hourly":{"time":["2024-02-01T00:00","2024-02-01T01:00"],
			"temperature_2m":[12.5,12.5],"relative_humidity_2m":[65,65],
			"weather_code":[2,2],"wind_speed_10m":[4.6,4.6]}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.GeocodingURL = server.URL + "/v1/search"
	cfg.ForecastURL = server.URL + "/v1/dwd-icon"
	cfg.UpstreamTimeout = 2 * time.Second
	return cfg
}

func TestRun_PrintsSnapshot(t *testing.T) {
	cfg := fakeOpenMeteo(t, http.StatusOK)
	var out bytes.Buffer

	if code := run(context.Background(), []string{"Athens"}, cfg, zap.NewNop(), &out); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	want := "Temperature: 12.5°C\nCondition:   Cloudy\nHumidity:    65%\nWind speed:  4.6 km/h\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestRun_FailuresPrintNothing(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		status int
	}{
		{"no args", nil, http.StatusOK},
		{"url-special characters", []string{"Athens&count=1"}, http.StatusOK},
		{"unknown place", []string{"Nowhereville"}, http.StatusOK},
		{"geocoding down", []string{"Athens"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fakeOpenMeteo(t, tt.status)
			var out bytes.Buffer
			if code := run(context.Background(), tt.args, cfg, zap.NewNop(), &out); code != 1 {
				t.Errorf("run() = %d, want 1", code)
			}
			if out.Len() != 0 {
				t.Errorf("output = %q, want nothing", out.String())
			}
		})
	}
}

func TestRun_FailedLookupIsLogged(t *testing.T) {
	cfg := fakeOpenMeteo(t, http.StatusBadGateway)
	core, logs := observer.New(zap.WarnLevel)

	if code := run(context.Background(), []string{"Athens"}, cfg, zap.New(core), &bytes.Buffer{}); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
	entries := logs.FilterMessage("could not fetch weather").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries = %d, want 1", len(entries))
	}
	if entries[0].ContextMap()["location"] != "Athens" {
		t.Errorf("location = %v, want Athens", entries[0].ContextMap()["location"])
	}
}

func TestRun_JoinsArgs(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("name")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()
	cfg := config.Default()
	cfg.GeocodingURL = server.URL
	cfg.ForecastURL = server.URL

	run(context.Background(), []string{"New", "York"}, cfg, zap.NewNop(), &bytes.Buffer{})
	if got != "New York" {
		t.Errorf("geocoding name = %q, want New York", got)
	}
}

func TestRender_UnknownConditionIsBlank(t *testing.T) {
	var out bytes.Buffer
	render(&out, &models.WeatherSnapshot{Temperature: -1.5, Condition: models.ConditionUnknown, Humidity: 90, WindSpeed: 0})
	if !strings.Contains(out.String(), "Condition:   \n") {
		t.Errorf("output = %q, want a blank condition line", out.String())
	}
	if !strings.Contains(out.String(), "Temperature: -1.5°C") {
		t.Errorf("output = %q, want negative temperature", out.String())
	}
}
