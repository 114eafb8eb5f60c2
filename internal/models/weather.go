package models

import "fmt"

// LocationCandidate is one geocoding match, in provider order.
type LocationCandidate struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	Admin1    string  `json:"admin1,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
}

// HourlySeries holds the forecast's parallel arrays. Index i of every slice
// describes the same hour.
type HourlySeries struct {
	Time        []string  `json:"time"`
	Temperature []float64 `json:"temperature_2m"`
	Humidity    []int     `json:"relative_humidity_2m"`
	WeatherCode []int     `json:"weather_code"`
	WindSpeed   []float64 `json:"wind_speed_10m"`
}

// Validate reports an empty series or arrays of unequal length.
func (h HourlySeries) Validate() error {
	n := len(h.Time)
	if n == 0 {
		return fmt.Errorf("hourly series is empty")
	}
	lengths := map[string]int{
		"temperature_2m":       len(h.Temperature),
		"relative_humidity_2m": len(h.Humidity),
		"weather_code":         len(h.WeatherCode),
		"wind_speed_10m":       len(h.WindSpeed),
	}
	for field, l := range lengths {
		if l != n {
			return fmt.Errorf("hourly %s has %d values, time has %d", field, l, n)
		}
	}
	return nil
}

// WeatherSnapshot is the current-hour reading handed to display layers.
type WeatherSnapshot struct {
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"weatherCondition"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
}

// SnapshotAt builds a snapshot from the series values at index i.
// Caller must ensure the series is valid and i is in range.
func SnapshotAt(h HourlySeries, i int) WeatherSnapshot {
	return WeatherSnapshot{
		Temperature: h.Temperature[i],
		Condition:   ConditionFromCode(h.WeatherCode[i]),
		Humidity:    h.Humidity[i],
		WindSpeed:   h.WindSpeed[i],
	}
}
