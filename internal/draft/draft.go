// Package draft accumulates the inputs of one capture session until they form
// a complete place.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"places/internal/enrich"
	"places/internal/models"
	"places/pkg/geo"
)

// ErrFinalized is returned by every method of a draft that already produced
// its place.
var ErrFinalized = errors.New("draft already finalized")

// ValidationError lists the fields that prevent a draft from being finalized,
// or explains why a value was rejected.
type ValidationError struct {
	Missing []string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return "invalid draft: " + e.Err.Error()
	}
	return "incomplete draft: missing " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Draft is owned by a single creation flow. It is safe for concurrent use but
// can only be finalized once.
type Draft struct {
	mu       sync.Mutex
	title    string
	imageURI string
	location *geo.Coordinate
	done     bool

	annotate *enrich.Pipeline[models.Place]
	newID    func() string
}

type Option func(*Draft)

// WithAnnotations runs p on the place produced by Finalize.
func WithAnnotations(p *enrich.Pipeline[models.Place]) Option {
	return func(d *Draft) { d.annotate = p }
}

// WithIDGenerator replaces the uuid based id source.
func WithIDGenerator(f func() string) Option {
	return func(d *Draft) { d.newID = f }
}

func New(opts ...Option) *Draft {
	d := &Draft{newID: uuid.NewString}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Draft) SetTitle(title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return ErrFinalized
	}
	d.title = title
	return nil
}

func (d *Draft) SetImage(uri string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return ErrFinalized
	}
	d.imageURI = uri
	return nil
}

// SetLocation replaces the coordinate. An invalid coordinate is rejected and
// the previous one is kept.
func (d *Draft) SetLocation(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return &ValidationError{Err: err}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return ErrFinalized
	}
	d.location = &c
	return nil
}

// Location returns the current coordinate and whether one is set.
func (d *Draft) Location() (geo.Coordinate, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.location == nil {
		return geo.Coordinate{}, false
	}
	return *d.location, true
}

func (d *Draft) IsComplete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.done && len(d.missing()) == 0
}

func (d *Draft) missing() []string {
	var m []string
	if strings.TrimSpace(d.title) == "" {
		m = append(m, "title")
	}
	if d.imageURI == "" {
		m = append(m, "image")
	}
	if d.location == nil {
		m = append(m, "location")
	}
	return m
}

// Finalize turns a complete draft into a place with a fresh id and runs the
// annotation pipeline on it. Annotation failures leave the derived fields
// empty. On any error the draft stays open; on success it is closed for good.
func (d *Draft) Finalize(ctx context.Context) (models.Place, error) {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return models.Place{}, ErrFinalized
	}
	if missing := d.missing(); len(missing) > 0 {
		d.mu.Unlock()
		return models.Place{}, &ValidationError{Missing: missing}
	}
	p := models.Place{
		ID:       d.newID(),
		Title:    strings.TrimSpace(d.title),
		ImageURI: d.imageURI,
		Location: *d.location,
	}
	d.done = true
	d.mu.Unlock()

	d.annotate.Apply(ctx, &p)
	if err := p.Validate(); err != nil {
		d.mu.Lock()
		d.done = false
		d.mu.Unlock()
		return models.Place{}, fmt.Errorf("annotation broke place %s: %w", p.ID, err)
	}
	return p, nil
}
