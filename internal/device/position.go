package device

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"places/pkg/geo"
)

// ErrNoFix is returned when a positioner has nothing to report.
var ErrNoFix = errors.New("no position fix")

// StaticPositioner always reports the same configured coordinate.
type StaticPositioner struct {
	Coordinate geo.Coordinate
}

func (s StaticPositioner) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	return s.Coordinate, nil
}

// GeoIPPositioner approximates the device position with a MaxMind City
// lookup of the machine's public address.
type GeoIPPositioner struct {
	db *geoip2.Reader
	ip net.IP
}

func NewGeoIPPositioner(dbPath, ip string) (*GeoIPPositioner, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, fmt.Errorf("invalid device IP %q", ip)
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &GeoIPPositioner{db: db, ip: addr}, nil
}

func (g *GeoIPPositioner) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	city, err := g.db.City(g.ip)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to look up %s: %w", g.ip, err)
	}
	if city.Location.Latitude == 0 && city.Location.Longitude == 0 {
		return geo.Coordinate{}, fmt.Errorf("%w for %s", ErrNoFix, g.ip)
	}
	return geo.Coordinate{Lat: city.Location.Latitude, Lng: city.Location.Longitude}, nil
}

func (g *GeoIPPositioner) Close() error {
	return g.db.Close()
}

// NoPositioner is used when neither a fixed position nor a GeoIP database is
// configured. Every read fails, as on a device without a location fix.
type NoPositioner struct{}

func (NoPositioner) CurrentPosition(context.Context) (geo.Coordinate, error) {
	return geo.Coordinate{}, ErrNoFix
}
