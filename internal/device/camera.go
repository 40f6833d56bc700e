package device

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"places/internal/capture"
)

// FileCamera "takes" a photo by reading an existing image file. The shot is
// written as a JPEG into Dir, which plays the role of the camera's transient
// cache: the store copies it into stable storage on save.
type FileCamera struct {
	Photo string
	Dir   string
	log   *slog.Logger
}

func NewFileCamera(photo, dir string, log *slog.Logger) *FileCamera {
	if log == nil {
		log = slog.Default()
	}
	return &FileCamera{Photo: photo, Dir: dir, log: log}
}

// Launch implements capture.Launcher. An empty Photo is a cancelled shot.
func (c *FileCamera) Launch(ctx context.Context, opts capture.CaptureOptions) (capture.CaptureResult, error) {
	if c.Photo == "" {
		return capture.CaptureResult{Cancelled: true}, nil
	}
	if err := ctx.Err(); err != nil {
		return capture.CaptureResult{}, err
	}

	src, err := os.Open(c.Photo)
	if err != nil {
		return capture.CaptureResult{}, fmt.Errorf("failed to open photo: %w", err)
	}
	defer src.Close()
	img, format, err := image.Decode(src)
	if err != nil {
		return capture.CaptureResult{}, fmt.Errorf("failed to decode photo %s: %w", c.Photo, err)
	}
	if opts.AllowsEditing {
		img = cropToAspect(img, opts.Aspect)
	}

	out, err := os.CreateTemp(c.Dir, "capture-*.jpg")
	if err != nil {
		return capture.CaptureResult{}, fmt.Errorf("failed to create capture file: %w", err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		out.Close()
		os.Remove(out.Name())
		return capture.CaptureResult{}, fmt.Errorf("failed to encode capture: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return capture.CaptureResult{}, fmt.Errorf("failed to write capture: %w", err)
	}

	b := img.Bounds()
	c.log.Debug("photo_captured", "source", c.Photo, "format", format, "width", b.Dx(), "height", b.Dy(), "uri", out.Name())
	return capture.CaptureResult{URI: out.Name()}, nil
}

// jpegQuality maps a 0..1 compression quality onto the encoder's 1..100.
func jpegQuality(q float64) int {
	v := int(q * 100)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// cropToAspect cuts the largest centred w:h window out of img.
func cropToAspect(img image.Image, aspect [2]int) image.Image {
	aw, ah := aspect[0], aspect[1]
	if aw <= 0 || ah <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w*ah > h*aw {
		w = h * aw / ah
	} else {
		h = w * ah / aw
	}
	if w == 0 || h == 0 || (w == b.Dx() && h == b.Dy()) {
		return img
	}
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return dst
}
