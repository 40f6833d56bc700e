// Package capture adapts the OS camera and location primitives into results
// the draft builder can use, converting platform failures into a small error
// set. Callers must pass the permission gate before using Camera or Locator.
package capture

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCancelled means the user backed out. It is not a failure; the draft
	// simply keeps its previous image.
	ErrCancelled = errors.New("capture cancelled")
	// ErrCaptureFailed wraps any other camera failure.
	ErrCaptureFailed = errors.New("camera capture failed")
)

// ImageHandle points at the transient file the camera produced.
type ImageHandle struct {
	URI string
}

// CaptureOptions configures the OS camera UI.
type CaptureOptions struct {
	AllowsEditing bool
	// Aspect is the crop ratio as width:height.
	Aspect  [2]int
	Quality float64
}

// DefaultCaptureOptions crops to 16:9 and halves the JPEG quality to keep
// stored photos small.
var DefaultCaptureOptions = CaptureOptions{
	AllowsEditing: true,
	Aspect:        [2]int{16, 9},
	Quality:       0.5,
}

// CaptureResult is what the OS camera hands back.
type CaptureResult struct {
	Cancelled bool
	URI       string
}

// Launcher opens the OS camera and waits for the user.
type Launcher interface {
	Launch(ctx context.Context, opts CaptureOptions) (CaptureResult, error)
}

type Camera struct {
	launcher Launcher
	opts     CaptureOptions
}

func NewCamera(l Launcher) *Camera {
	return &Camera{launcher: l, opts: DefaultCaptureOptions}
}

// Capture takes one photo. It returns ErrCancelled when the user backs out.
func (c *Camera) Capture(ctx context.Context) (ImageHandle, error) {
	res, err := c.launcher.Launch(ctx, c.opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled) {
			return ImageHandle{}, ErrCancelled
		}
		return ImageHandle{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if res.Cancelled {
		return ImageHandle{}, ErrCancelled
	}
	if res.URI == "" {
		return ImageHandle{}, fmt.Errorf("%w: camera returned no image", ErrCaptureFailed)
	}
	return ImageHandle{URI: res.URI}, nil
}
