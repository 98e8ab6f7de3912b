// Package detector defines the optional region-detection capabilities (faces,
// license plates) consumed by the anonymization step, and an HTTP client for a
// detection sidecar.
//
// Detectors are optional: an unconfigured detector returns ErrUnavailable and
// callers are expected to skip the affected step rather than fail.
package detector

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the detector is not configured or its backing
// service cannot be used. It is a degraded-capability signal, never fatal to a
// moderation request.
var ErrUnavailable = errors.New("detector unavailable")

// Box is a detected region in pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detector locates regions of interest (faces, plates) in raw image bytes.
type Detector interface {
	Detect(ctx context.Context, imageBytes []byte) ([]Box, error)
}

// Pad expands the box by padX/padY on each side, then clamps to the image
// bounds. The result always satisfies 0 <= X,Y and X+Width <= imageWidth,
// Y+Height <= imageHeight, with non-negative dimensions.
func (b Box) Pad(padX, padY, imageWidth, imageHeight int) Box {
	x := b.X - padX
	y := b.Y - padY
	w := b.Width + 2*padX
	h := b.Height + 2*padY
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > imageWidth {
		w = imageWidth - x
	}
	if y+h > imageHeight {
		h = imageHeight - y
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Box{X: x, Y: y, Width: w, Height: h}
}

// Clamp restricts the box to the image bounds without padding.
func (b Box) Clamp(imageWidth, imageHeight int) Box {
	return b.Pad(0, 0, imageWidth, imageHeight)
}

// Empty reports whether the box covers no pixels.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}
