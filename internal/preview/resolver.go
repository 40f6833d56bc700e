// Package preview derives display data from a coordinate: a static map
// thumbnail URL and a best-effort street address.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"places/internal/models"
	"places/pkg/geo"
	"places/pkg/location"
)

const staticMapBase = "https://maps.googleapis.com/maps/api/staticmap"

// MapConfig is the fixed static map layout plus the API credential.
type MapConfig struct {
	Zoom   int
	Width  int
	Height int
	APIKey string
}

// DefaultMapConfig matches the thumbnail size used by the list and form.
func DefaultMapConfig(apiKey string) MapConfig {
	return MapConfig{Zoom: 14, Width: 400, Height: 200, APIKey: apiKey}
}

// URL builds the static map image URL centred on c with a red "S" marker.
// It depends on nothing but c and m.
func (m MapConfig) URL(c geo.Coordinate) string {
	center := degrees(c.Lat) + "," + degrees(c.Lng)
	return fmt.Sprintf("%s?center=%s&zoom=%d&size=%dx%d&maptype=roadmap&markers=color:red%%7Clabel:S%%7C%s&key=%s",
		staticMapBase, center, m.Zoom, m.Width, m.Height, center, url.QueryEscape(m.APIKey))
}

func degrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Resolver serves preview URLs and cached reverse geocoding.
type Resolver struct {
	maps     MapConfig
	geocoder location.ReverseGeocoder
	cache    *cache.Cache
	timeout  time.Duration
	log      *slog.Logger
}

type Options struct {
	// CacheTTL of zero disables address caching.
	CacheTTL time.Duration
	// Timeout bounds one geocoding call; zero means no extra bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewResolver builds a resolver. geocoder may be nil, in which case every
// address resolves to "".
func NewResolver(maps MapConfig, geocoder location.ReverseGeocoder, opts Options) *Resolver {
	r := &Resolver{maps: maps, geocoder: geocoder, timeout: opts.Timeout, log: opts.Logger}
	if r.log == nil {
		r.log = slog.Default()
	}
	if opts.CacheTTL > 0 {
		r.cache = cache.New(opts.CacheTTL, opts.CacheTTL*2)
	}
	return r
}

func (r *Resolver) PreviewURL(c geo.Coordinate) string {
	return r.maps.URL(c)
}

// ReverseGeocode returns the address at c, or "" when it cannot be resolved.
// It never fails: a missing address must not block saving a place.
func (r *Resolver) ReverseGeocode(ctx context.Context, c geo.Coordinate) string {
	if r.geocoder == nil {
		return ""
	}
	key := c.Round(5).String()
	if r.cache != nil {
		if cached, found := r.cache.Get(key); found {
			return cached.(string)
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	addr, err := r.geocoder.ReverseGeocode(ctx, c)
	if err != nil {
		r.log.Warn("reverse_geocode_failed", "coordinate", c.String(), "error", err)
		return ""
	}
	if r.cache != nil {
		r.cache.Set(key, addr, cache.DefaultExpiration)
	}
	return addr
}

// AddressStep annotates a place with the address of its location. It is a
// step for the enrich pipeline and always succeeds.
func (r *Resolver) AddressStep(ctx context.Context, p *models.Place) error {
	p.Address = r.ReverseGeocode(ctx, p.Location)
	return nil
}
