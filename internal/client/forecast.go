package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kjstillabower/current-weather-service/internal/models"
)

var hourlyFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"weather_code",
	"wind_speed_10m",
}

type forecastResponse struct {
	Hourly *hourlyResponse `json:"hourly"`
}

// hourlyResponse holds the raw arrays. Elements are pointers because the
// provider sends null for hours it has no value for.
type hourlyResponse struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
	Humidity    []*int     `json:"relative_humidity_2m"`
	WeatherCode []*int     `json:"weather_code"`
	WindSpeed   []*float64 `json:"wind_speed_10m"`
}

func (h *hourlyResponse) series() (models.HourlySeries, error) {
	temperature, err := derefAll("temperature_2m", h.Temperature)
	if err != nil {
		return models.HourlySeries{}, err
	}
	humidity, err := derefAll("relative_humidity_2m", h.Humidity)
	if err != nil {
		return models.HourlySeries{}, err
	}
	codes, err := derefAll("weather_code", h.WeatherCode)
	if err != nil {
		return models.HourlySeries{}, err
	}
	wind, err := derefAll("wind_speed_10m", h.WindSpeed)
	if err != nil {
		return models.HourlySeries{}, err
	}
	return models.HourlySeries{
		Time:        h.Time,
		Temperature: temperature,
		Humidity:    humidity,
		WeatherCode: codes,
		WindSpeed:   wind,
	}, nil
}

func derefAll[T any](field string, in []*T) ([]T, error) {
	out := make([]T, len(in))
	for i, v := range in {
		if v == nil {
			return nil, fmt.Errorf("hourly %s[%d] is null", field, i)
		}
		out[i] = *v
	}
	return out, nil
}

// GetHourly fetches the hourly temperature, humidity, weather code and wind
// speed series for the coordinate. The returned series is validated: all
// arrays are non-empty, index-aligned and free of nulls.
func (c *OpenMeteoClient) GetHourly(ctx context.Context, latitude, longitude float64) (models.HourlySeries, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("hourly", strings.Join(hourlyFields, ","))

	body, err := c.get(ctx, endpointForecast, c.forecastURL+"?"+params.Encode())
	if err != nil {
		return models.HourlySeries{}, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.HourlySeries{}, fmt.Errorf("%w: forecast response: %w", ErrParse, err)
	}
	if resp.Hourly == nil {
		return models.HourlySeries{}, fmt.Errorf("%w: forecast response has no hourly object", ErrParse)
	}
	series, err := resp.Hourly.series()
	if err != nil {
		return models.HourlySeries{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := series.Validate(); err != nil {
		return models.HourlySeries{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return series, nil
}
