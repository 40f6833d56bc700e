// Package service coordinates the capture adapters, the draft and the store
// into the flows the screens call.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"places/internal/capture"
	"places/internal/draft"
	"places/internal/enrich"
	"places/internal/models"
	"places/internal/permission"
	"places/internal/preview"
	"places/pkg/geo"
)

// PlaceWriter is the part of the store a capture session needs.
type PlaceWriter interface {
	Insert(ctx context.Context, p models.Place) (models.Place, error)
}

// Deps are the collaborators shared by every capture session.
type Deps struct {
	Gate     *permission.Gate
	Camera   *capture.Camera
	Locator  *capture.Locator
	Picker   *capture.MapPicker
	Resolver *preview.Resolver
	Store    PlaceWriter
	Logger   *slog.Logger
}

// CaptureSession backs one "add place" form. It owns a fresh draft and is
// done once Save succeeded; open a new session for the next place.
type CaptureSession struct {
	deps  Deps
	draft *draft.Draft
	log   *slog.Logger
}

func NewCaptureSession(deps Deps) *CaptureSession {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	var annotations *enrich.Pipeline[models.Place]
	if deps.Resolver != nil {
		annotations = enrich.NewPipeline(
			enrich.NewStage(deps.Resolver.AddressStep).Named("address"),
		).WithLogger(log)
	}
	return &CaptureSession{
		deps:  deps,
		draft: draft.New(draft.WithAnnotations(annotations)),
		log:   log,
	}
}

func (s *CaptureSession) SetTitle(title string) error {
	return s.draft.SetTitle(title)
}

// TakeImage asks for camera access, opens the camera and stores the result
// in the draft. It reports false without an error when the user cancelled;
// the draft keeps whatever image it had. A refused permission returns
// permission.ErrDenied.
func (s *CaptureSession) TakeImage(ctx context.Context) (bool, error) {
	img, err := permission.Guard(ctx, s.deps.Gate, permission.Camera, s.deps.Camera.Capture)
	if errors.Is(err, capture.ErrCancelled) {
		s.log.Debug("capture_cancelled")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.draft.SetImage(img.URI); err != nil {
		return false, err
	}
	s.log.Debug("image_taken", "uri", img.URI)
	return true, nil
}

// LocateUser asks for location access and uses the device position.
// Failures leave the draft's location unchanged.
func (s *CaptureSession) LocateUser(ctx context.Context) (geo.Coordinate, error) {
	c, err := permission.Guard(ctx, s.deps.Gate, permission.Location, s.deps.Locator.LocateDevice)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if err := s.draft.SetLocation(c); err != nil {
		return geo.Coordinate{}, err
	}
	s.log.Debug("location_set", "source", "device", "coordinate", c.String())
	return c, nil
}

// PickOnMap lets the user choose the location on a map. No permission is
// needed. A cancelled pick returns capture.ErrCancelled.
func (s *CaptureSession) PickOnMap(ctx context.Context) (geo.Coordinate, error) {
	if s.deps.Picker == nil {
		return geo.Coordinate{}, errors.New("no map picker configured")
	}
	c, err := s.deps.Picker.PickOnMap(ctx)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if err := s.draft.SetLocation(c); err != nil {
		return geo.Coordinate{}, err
	}
	s.log.Debug("location_set", "source", "map", "coordinate", c.String())
	return c, nil
}

// Preview returns the static map URL for the picked location, or "" when
// there is none yet.
func (s *CaptureSession) Preview() string {
	c, ok := s.draft.Location()
	if !ok || s.deps.Resolver == nil {
		return ""
	}
	return s.deps.Resolver.PreviewURL(c)
}

// CanSave tells the form whether the submit action should be enabled.
func (s *CaptureSession) CanSave() bool {
	return s.draft.IsComplete()
}

// Save finalizes the draft and persists the place. Incomplete drafts fail
// with a *draft.ValidationError; store failures with a *store.StorageError.
func (s *CaptureSession) Save(ctx context.Context) (models.Place, error) {
	p, err := s.draft.Finalize(ctx)
	if err != nil {
		return models.Place{}, err
	}
	stored, err := s.deps.Store.Insert(ctx, p)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to save place %q: %w", p.Title, err)
	}
	return stored, nil
}
