package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"places/pkg/geo"
)

// GoogleClient uses the Google Geocoding API.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewGoogleClient(httpClient *http.Client, baseURL, apiKey string) *GoogleClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}
	return &GoogleClient{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
	} `json:"results"`
}

// ReverseGeocode returns the formatted address of the first result.
func (g *GoogleClient) ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error) {
	params := url.Values{}
	params.Set("latlng", c.String())
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s/maps/api/geocode/json?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var body googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}
	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return "", fmt.Errorf("%w at %s", ErrNoResult, c)
	default:
		return "", fmt.Errorf("geocode status %s: %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 || body.Results[0].FormattedAddress == "" {
		return "", fmt.Errorf("%w at %s", ErrNoResult, c)
	}
	return body.Results[0].FormattedAddress, nil
}
