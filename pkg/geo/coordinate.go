// Package geo holds the coordinate type shared by the capture adapters, the
// preview resolver and the place store.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrLatitudeRange  = errors.New("latitude must be within [-90, 90]")
	ErrLongitudeRange = errors.New("longitude must be within [-180, 180]")
	ErrMalformed      = errors.New("coordinate must look like \"lat,lng\"")
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether both components are finite and inside their ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: got %v", ErrLatitudeRange, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: got %v", ErrLongitudeRange, c.Lng)
	}
	return nil
}

func (c Coordinate) String() string {
	return FormatDegrees(c.Lat) + "," + FormatDegrees(c.Lng)
}

// FormatDegrees renders a component with six decimals, roughly 0.1m.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ParseCoordinate reads "lat,lng" (whitespace tolerated) and validates it.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	c := Coordinate{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Round snaps both components to the given number of decimals. It is used to
// build cache keys so that jitter below the precision shares one entry.
func (c Coordinate) Round(decimals int) Coordinate {
	p := math.Pow(10, float64(decimals))
	return Coordinate{
		Lat: math.Round(c.Lat*p) / p,
		Lng: math.Round(c.Lng*p) / p,
	}
}
