package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places/internal/capture"
	"places/internal/draft"
	"places/internal/permission"
	"places/internal/preview"
	"places/internal/storage"
	"places/internal/store"
	"places/pkg/geo"
)

var eiffel = geo.Coordinate{Lat: 48.8584, Lng: 2.2945}

type statusProvider struct {
	statuses map[permission.Capability]permission.Status
	requests int
}

func (p *statusProvider) Status(_ context.Context, c permission.Capability) (permission.Status, error) {
	return p.statuses[c], nil
}

func (p *statusProvider) Request(_ context.Context, c permission.Capability) (bool, error) {
	p.requests++
	p.statuses[c] = permission.Granted
	return true, nil
}

type fileLauncher struct {
	dir       string
	cancelled bool
}

func (l *fileLauncher) Launch(_ context.Context, _ capture.CaptureOptions) (capture.CaptureResult, error) {
	if l.cancelled {
		return capture.CaptureResult{Cancelled: true}, nil
	}
	p := filepath.Join(l.dir, "img1.jpg")
	if err := os.WriteFile(p, []byte("jpeg"), 0o600); err != nil {
		return capture.CaptureResult{}, err
	}
	return capture.CaptureResult{URI: p}, nil
}

type fixedPositioner struct {
	c   geo.Coordinate
	err error
}

func (f fixedPositioner) CurrentPosition(context.Context) (geo.Coordinate, error) { return f.c, f.err }

type addressBook map[geo.Coordinate]string

func (a addressBook) ReverseGeocode(_ context.Context, c geo.Coordinate) (string, error) {
	if addr, ok := a[c]; ok {
		return addr, nil
	}
	return "", errors.New("unknown place")
}

type harness struct {
	deps     Deps
	provider *statusProvider
	launcher *fileLauncher
	alerts   int
	store    *store.Store
}

func newHarness(t *testing.T, positioner fixedPositioner, statuses map[permission.Capability]permission.Status) *harness {
	t.Helper()
	h := &harness{
		provider: &statusProvider{statuses: statuses},
		launcher: &fileLauncher{dir: t.TempDir()},
	}
	images, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "images"), nil)
	require.NoError(t, err)
	h.store = store.New(":memory:", images, nil)
	require.NoError(t, h.store.Init(context.Background()))
	t.Cleanup(func() { _ = h.store.Close() })

	resolver := preview.NewResolver(preview.DefaultMapConfig("KEY"), addressBook{
		eiffel: "Champ de Mars, 5 Av. Anatole France, 75007 Paris, France",
	}, preview.Options{})

	h.deps = Deps{
		Gate:     permission.NewGate(h.provider, permission.AlerterFunc(func(string, string) { h.alerts++ }), nil),
		Camera:   capture.NewCamera(h.launcher),
		Locator:  capture.NewLocator(positioner),
		Picker:   capture.NewMapPicker(func(context.Context) (geo.Coordinate, error) { return eiffel, nil }),
		Resolver: resolver,
		Store:    h.store,
	}
	return h
}

func granted() map[permission.Capability]permission.Status {
	return map[permission.Capability]permission.Status{
		permission.Camera:   permission.Granted,
		permission.Location: permission.Granted,
	}
}

func TestCaptureSession_EiffelTower(t *testing.T) {
	h := newHarness(t, fixedPositioner{c: eiffel}, granted())
	ctx := context.Background()
	s := NewCaptureSession(h.deps)

	require.NoError(t, s.SetTitle("Eiffel Tower"))
	took, err := s.TakeImage(ctx)
	require.NoError(t, err)
	require.True(t, took)
	assert.False(t, s.CanSave())

	c, err := s.LocateUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, eiffel, c)
	assert.Contains(t, s.Preview(), "center=48.8584,2.2945")
	assert.True(t, s.CanSave())

	p, err := s.Save(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Eiffel Tower", p.Title)
	assert.Equal(t, eiffel, p.Location)
	assert.Equal(t, "Champ de Mars, 5 Av. Anatole France, 75007 Paris, France", p.Address)
	assert.NotEqual(t, filepath.Join(h.launcher.dir, "img1.jpg"), p.ImageURI)

	views, err := NewPlaces(h.store, h.deps.Resolver).List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, p, views[0].Place)
	assert.Equal(t, h.deps.Resolver.PreviewURL(eiffel), views[0].PreviewURL)

	// the session is single use
	_, err = s.Save(ctx)
	assert.ErrorIs(t, err, draft.ErrFinalized)
}

func TestCaptureSession_GeocodingUnavailable(t *testing.T) {
	elsewhere := geo.Coordinate{Lat: -33.8568, Lng: 151.2153}
	h := newHarness(t, fixedPositioner{c: elsewhere}, granted())
	ctx := context.Background()
	s := NewCaptureSession(h.deps)

	require.NoError(t, s.SetTitle("Opera House"))
	_, err := s.TakeImage(ctx)
	require.NoError(t, err)
	_, err = s.LocateUser(ctx)
	require.NoError(t, err)

	p, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.Address)
}

func TestCaptureSession_CameraCancelled(t *testing.T) {
	h := newHarness(t, fixedPositioner{c: eiffel}, granted())
	h.launcher.cancelled = true
	ctx := context.Background()
	s := NewCaptureSession(h.deps)

	require.NoError(t, s.SetTitle("Eiffel Tower"))
	took, err := s.TakeImage(ctx)
	require.NoError(t, err)
	assert.False(t, took)
	_, err = s.LocateUser(ctx)
	require.NoError(t, err)

	assert.False(t, s.CanSave())
	_, err = s.Save(ctx)
	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"image"}, verr.Missing)
}

func TestCaptureSession_CameraDenied(t *testing.T) {
	statuses := granted()
	statuses[permission.Camera] = permission.Denied
	h := newHarness(t, fixedPositioner{c: eiffel}, statuses)
	s := NewCaptureSession(h.deps)

	took, err := s.TakeImage(context.Background())
	assert.ErrorIs(t, err, permission.ErrDenied)
	assert.False(t, took)
	assert.Equal(t, 1, h.alerts)
	assert.Zero(t, h.provider.requests)
}

func TestCaptureSession_LocationUndeterminedAsksOnce(t *testing.T) {
	statuses := granted()
	statuses[permission.Location] = permission.Undetermined
	h := newHarness(t, fixedPositioner{c: eiffel}, statuses)
	s := NewCaptureSession(h.deps)

	_, err := s.LocateUser(context.Background())
	require.NoError(t, err)
	_, err = s.LocateUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.provider.requests)
}

func TestCaptureSession_LocationUnavailable(t *testing.T) {
	h := newHarness(t, fixedPositioner{err: errors.New("no fix")}, granted())
	s := NewCaptureSession(h.deps)

	_, err := s.LocateUser(context.Background())
	assert.ErrorIs(t, err, capture.ErrLocationUnavailable)
	assert.Empty(t, s.Preview())
}

func TestCaptureSession_PickOnMapBypassesGate(t *testing.T) {
	statuses := granted()
	statuses[permission.Location] = permission.Denied
	h := newHarness(t, fixedPositioner{}, statuses)
	ctx := context.Background()
	s := NewCaptureSession(h.deps)

	require.NoError(t, s.SetTitle("Eiffel Tower"))
	_, err := s.TakeImage(ctx)
	require.NoError(t, err)
	c, err := s.PickOnMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, eiffel, c)
	assert.Zero(t, h.alerts)

	p, err := s.Save(ctx)
	require.NoError(t, err)
	// map picks resolve addresses exactly like device fixes
	assert.Equal(t, "Champ de Mars, 5 Av. Anatole France, 75007 Paris, France", p.Address)
}

func TestPlaces_Detail(t *testing.T) {
	h := newHarness(t, fixedPositioner{c: eiffel}, granted())
	ctx := context.Background()
	s := NewCaptureSession(h.deps)
	require.NoError(t, s.SetTitle("Eiffel Tower"))
	_, err := s.TakeImage(ctx)
	require.NoError(t, err)
	_, err = s.PickOnMap(ctx)
	require.NoError(t, err)
	saved, err := s.Save(ctx)
	require.NoError(t, err)

	places := NewPlaces(h.store, h.deps.Resolver)
	v, err := places.Detail(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, v.Place)

	_, err = places.Detail(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
