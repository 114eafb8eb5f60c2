package http

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/kjstillabower/current-weather-service/internal/client"
	"github.com/kjstillabower/current-weather-service/internal/models"
)

func benchmarkRoute(b *testing.B, geo *mockGeocoder, fc *mockForecaster, path string) {
	router := newTestRouter(newTestHandler(geo, fc, &HealthConfig{}, nil))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}
}

func BenchmarkHandler_GetWeather(b *testing.B) {
	benchmarkRoute(b, &mockGeocoder{candidates: []models.LocationCandidate{athens}}, &mockForecaster{series: oneHour()}, "/weather/Athens")
}

func BenchmarkHandler_GetWeather_UpstreamError(b *testing.B) {
	benchmarkRoute(b, &mockGeocoder{err: fmt.Errorf("%w: geocoding returned HTTP 500", client.ErrNetwork)}, &mockForecaster{}, "/weather/Athens")
}

func BenchmarkHandler_GetLocations(b *testing.B) {
	benchmarkRoute(b, &mockGeocoder{candidates: []models.LocationCandidate{athens}}, &mockForecaster{}, "/locations/Athens")
}

func BenchmarkHandler_GetHealth(b *testing.B) {
	benchmarkRoute(b, &mockGeocoder{}, &mockForecaster{}, "/health")
}
