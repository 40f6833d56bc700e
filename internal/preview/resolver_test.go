package preview

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places/internal/models"
	"places/pkg/geo"
)

var eiffel = geo.Coordinate{Lat: 48.8584, Lng: 2.2945}

type stubGeocoder struct {
	calls atomic.Int32
	addr  string
	err   error
	delay time.Duration
}

func (s *stubGeocoder) ReverseGeocode(ctx context.Context, _ geo.Coordinate) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.addr, s.err
}

func TestMapConfig_URL(t *testing.T) {
	m := DefaultMapConfig("KEY")
	want := "https://maps.googleapis.com/maps/api/staticmap?center=48.8584,2.2945&zoom=14&size=400x200" +
		"&maptype=roadmap&markers=color:red%7Clabel:S%7C48.8584,2.2945&key=KEY"

	assert.Equal(t, want, m.URL(eiffel))
	// pure: same inputs, same output
	assert.Equal(t, m.URL(eiffel), m.URL(eiffel))

	other := MapConfig{Zoom: 10, Width: 320, Height: 180, APIKey: "OTHER"}
	assert.NotEqual(t, m.URL(eiffel), other.URL(eiffel))
	assert.Contains(t, other.URL(eiffel), "zoom=10&size=320x180")
	assert.Contains(t, other.URL(eiffel), "key=OTHER")
}

func TestMapConfig_URLEscapesKey(t *testing.T) {
	u := DefaultMapConfig("a&b#c+d").URL(eiffel)
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Empty(t, parsed.Fragment)
	assert.Equal(t, "a&b#c+d", parsed.Query().Get("key"))
	assert.True(t, strings.HasSuffix(u, "&key=a%26b%23c%2Bd"))
}

func TestResolver_ReverseGeocode(t *testing.T) {
	t.Run("resolves and caches", func(t *testing.T) {
		g := &stubGeocoder{addr: "Champ de Mars, Paris"}
		r := NewResolver(DefaultMapConfig("k"), g, Options{CacheTTL: time.Minute})

		assert.Equal(t, "Champ de Mars, Paris", r.ReverseGeocode(context.Background(), eiffel))
		// sub-metre jitter shares the cached entry
		jitter := geo.Coordinate{Lat: eiffel.Lat + 1e-7, Lng: eiffel.Lng}
		assert.Equal(t, "Champ de Mars, Paris", r.ReverseGeocode(context.Background(), jitter))
		assert.EqualValues(t, 1, g.calls.Load())
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		g := &stubGeocoder{err: errors.New("offline")}
		r := NewResolver(DefaultMapConfig("k"), g, Options{CacheTTL: time.Minute})

		assert.Empty(t, r.ReverseGeocode(context.Background(), eiffel))
		assert.Empty(t, r.ReverseGeocode(context.Background(), eiffel))
		assert.EqualValues(t, 2, g.calls.Load(), "failures must not be cached")
	})

	t.Run("timeout degrades to empty", func(t *testing.T) {
		g := &stubGeocoder{addr: "late", delay: time.Second}
		r := NewResolver(DefaultMapConfig("k"), g, Options{Timeout: 10 * time.Millisecond})
		assert.Empty(t, r.ReverseGeocode(context.Background(), eiffel))
	})

	t.Run("no geocoder", func(t *testing.T) {
		r := NewResolver(DefaultMapConfig("k"), nil, Options{})
		assert.Empty(t, r.ReverseGeocode(context.Background(), eiffel))
	})
}

func TestResolver_AddressStep(t *testing.T) {
	r := NewResolver(DefaultMapConfig("k"), &stubGeocoder{addr: "Paris"}, Options{})
	p := models.Place{ID: "1", Title: "Eiffel Tower", ImageURI: "img1", Location: eiffel}

	require.NoError(t, r.AddressStep(context.Background(), &p))
	assert.Equal(t, "Paris", p.Address)
}
