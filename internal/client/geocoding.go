package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kjstillabower/current-weather-service/internal/models"
)

// geocodingMaxResults is the candidate count requested from the provider.
const geocodingMaxResults = "10"

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

// geocodingResult mirrors models.LocationCandidate with nullable coordinates
// so a missing latitude or longitude is not read as zero.
type geocodingResult struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Country   string   `json:"country"`
	Admin1    string   `json:"admin1"`
	Timezone  string   `json:"timezone"`
}

// Resolve returns up to ten candidates for placeName in provider order.
// Spaces become "+" and non-ASCII bytes are percent-encoded; URL-special
// characters pass through untouched, so callers must reject them before
// calling. An unknown place yields an empty slice.
func (c *OpenMeteoClient) Resolve(ctx context.Context, placeName string) ([]models.LocationCandidate, error) {
	rawURL := c.geocodingURL +
		"?name=" + encodeNonASCII(strings.ReplaceAll(placeName, " ", "+")) +
		"&count=" + geocodingMaxResults +
		"&language=en&format=json"

	body, err := c.get(ctx, endpointGeocoding, rawURL)
	if err != nil {
		return nil, err
	}

	var resp geocodingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: geocoding response: %w", ErrParse, err)
	}
	candidates := make([]models.LocationCandidate, 0, len(resp.Results))
	for i, r := range resp.Results {
		if r.Latitude == nil || r.Longitude == nil {
			return nil, fmt.Errorf("%w: geocoding result %d (%q) has no coordinates", ErrParse, i, r.Name)
		}
		candidates = append(candidates, models.LocationCandidate{
			Name:      r.Name,
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Country:   r.Country,
			Admin1:    r.Admin1,
			Timezone:  r.Timezone,
		})
	}
	return candidates, nil
}

// encodeNonASCII percent-encodes bytes outside the ASCII range and leaves
// everything else as is.
func encodeNonASCII(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
