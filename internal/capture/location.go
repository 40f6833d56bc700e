package capture

import (
	"context"
	"errors"
	"fmt"

	"places/pkg/geo"
)

// ErrLocationUnavailable covers every way of not getting a usable position:
// no fix, hardware or OS errors, or an out of range reading.
var ErrLocationUnavailable = errors.New("location unavailable")

// Positioner reads the current device position once.
type Positioner interface {
	CurrentPosition(ctx context.Context) (geo.Coordinate, error)
}

type Locator struct {
	positioner Positioner
}

func NewLocator(p Positioner) *Locator {
	return &Locator{positioner: p}
}

func (l *Locator) LocateDevice(ctx context.Context) (geo.Coordinate, error) {
	c, err := l.positioner.CurrentPosition(ctx)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return c, nil
}

// NavigateFunc opens the map selection surface and returns the tapped
// coordinate. It is supplied by the presentation layer.
type NavigateFunc func(ctx context.Context) (geo.Coordinate, error)

// MapPicker lets the user choose a coordinate on a generic map. It shows no
// device position, so no permission is involved.
type MapPicker struct {
	navigate NavigateFunc
}

func NewMapPicker(navigate NavigateFunc) *MapPicker {
	return &MapPicker{navigate: navigate}
}

// PickOnMap returns ErrCancelled when the user leaves the map without a
// selection.
func (m *MapPicker) PickOnMap(ctx context.Context) (geo.Coordinate, error) {
	c, err := m.navigate(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			return geo.Coordinate{}, ErrCancelled
		}
		return geo.Coordinate{}, fmt.Errorf("map selection failed: %w", err)
	}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, fmt.Errorf("map selection failed: %w", err)
	}
	return c, nil
}
