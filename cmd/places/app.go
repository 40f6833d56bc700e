package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"places/internal/capture"
	"places/internal/config"
	"places/internal/device"
	"places/internal/logger"
	"places/internal/permission"
	"places/internal/preview"
	"places/internal/storage"
	"places/internal/store"
	"places/pkg/geo"
	"places/pkg/location"
)

// app holds what one command invocation needs. Everything is built lazily so
// that "preview" never touches the database.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	http  *http.Client
	store *store.Store

	closers []func() error
}

func newApp(cfg *config.Config) *app {
	return &app{
		cfg:  cfg,
		log:  logger.L(),
		http: &http.Client{Timeout: cfg.GeocodeTimeout},
	}
}

// openStore builds the image backend and brings the place store to ready.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	images, err := a.imageStore(ctx)
	if err != nil {
		return nil, err
	}
	s := store.New(a.cfg.DBPath, images, a.log)
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	a.store = s
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func (a *app) imageStore(ctx context.Context) (storage.ImageStore, error) {
	switch a.cfg.ImageBackend {
	case config.BackendS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:  a.cfg.S3.Endpoint,
			AccessKey: a.cfg.S3.AccessKey,
			SecretKey: a.cfg.S3.SecretKey,
			UseSSL:    a.cfg.S3.UseSSL,
			Bucket:    a.cfg.S3.Bucket,
		}, a.log)
	default:
		return storage.NewLocalStore(a.cfg.ImageDir, a.log)
	}
}

func (a *app) nominatim() *location.NominatimClient {
	return location.NewNominatimClient(a.http, a.cfg.NominatimURL, a.cfg.UserAgent)
}

func (a *app) geocoder() location.ReverseGeocoder {
	switch a.cfg.Geocoder {
	case config.GeocoderGoogle:
		return location.NewGoogleClient(a.http, "", a.cfg.GoogleAPIKey)
	case config.GeocoderNominatim:
		return a.nominatim()
	}
	return nil
}

func (a *app) resolver() *preview.Resolver {
	maps := preview.MapConfig{
		Zoom:   a.cfg.PreviewZoom,
		Width:  a.cfg.PreviewWidth,
		Height: a.cfg.PreviewHeight,
		APIKey: a.cfg.GoogleAPIKey,
	}
	return preview.NewResolver(maps, a.geocoder(), preview.Options{
		CacheTTL: a.cfg.GeocodeCacheTTL,
		Timeout:  a.cfg.GeocodeTimeout,
		Logger:   a.log,
	})
}

// positioner picks the best available stand-in for the device location.
func (a *app) positioner() (capture.Positioner, error) {
	d := a.cfg.Device
	switch {
	case d.HasFixedPosition:
		return device.StaticPositioner{Coordinate: geo.Coordinate{Lat: d.Lat, Lng: d.Lng}}, nil
	case d.GeoIPDB != "" && d.IP != "":
		p, err := device.NewGeoIPPositioner(d.GeoIPDB, d.IP)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		return p, nil
	}
	return device.NoPositioner{}, nil
}

// permissions seeds a fresh per-run session from the configuration.
func (a *app) permissions(console *device.Console) *device.ConsolePermissions {
	p := device.NewConsolePermissions(console, permission.NewSession(), a.log)
	p.Preset(permission.Camera, a.cfg.Device.CameraPermission)
	p.Preset(permission.Location, a.cfg.Device.LocationPermission)
	return p
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to release resources: %w", err)
	}
	return nil
}
