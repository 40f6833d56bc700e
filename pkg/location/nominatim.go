// Package location wraps the geocoding web services that turn coordinates
// into addresses and place names into coordinates.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"places/pkg/geo"
)

// ErrNoResult is returned when the service answered but found nothing.
var ErrNoResult = errors.New("no geocoding result")

// ReverseGeocoder turns a coordinate into a human readable address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error)
}

// NominatimClient talks to an OpenStreetMap Nominatim instance.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	language   string
}

func NewNominatimClient(httpClient *http.Client, baseURL, userAgent string) *NominatimClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &NominatimClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		language:   "en",
	}
}

// NominatimAddress is the address block shared by search and reverse answers.
type NominatimAddress struct {
	Tourism     string `json:"tourism"`
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// NominatimPlace is one element of a search answer, or the whole reverse
// answer.
type NominatimPlace struct {
	PlaceID     int64            `json:"place_id"`
	OsmType     string           `json:"osm_type"`
	OsmID       int64            `json:"osm_id"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Address     NominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// Coordinate parses the string encoded position of the place.
func (p NominatimPlace) Coordinate() (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("bad lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("bad lon %q: %w", p.Lon, err)
	}
	c := geo.Coordinate{Lat: lat, Lng: lon}
	return c, c.Validate()
}

// Settlement returns the most specific settlement name available.
func (a NominatimAddress) Settlement() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	}
	return a.Village
}

// ReverseGeocode asks /reverse for the address at c.
func (n *NominatimClient) ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error) {
	params := url.Values{}
	params.Set("lat", geo.FormatDegrees(c.Lat))
	params.Set("lon", geo.FormatDegrees(c.Lng))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("accept-language", n.language)

	var place NominatimPlace
	if err := n.get(ctx, "/reverse", params, &place); err != nil {
		return "", err
	}
	if place.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoResult, place.Error)
	}
	if place.DisplayName == "" {
		return "", fmt.Errorf("%w at %s", ErrNoResult, c)
	}
	return place.DisplayName, nil
}

// Search looks up a free text query and returns the best match.
func (n *NominatimClient) Search(ctx context.Context, query string) (*NominatimPlace, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", n.language)

	var results []NominatimPlace
	if err := n.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResult, query)
	}
	return &results[0], nil
}

func (n *NominatimClient) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", n.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	return nil
}
