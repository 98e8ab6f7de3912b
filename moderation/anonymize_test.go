package moderation

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/civicsignal/arbiter/moderation/detector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient with enough contrast that a blur visibly changes pixels
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), uint8((x ^ y) & 0xff), 255})
		}
	}
	return img
}

func inBox(x, y int, b detector.Box) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

func TestBlurRegionsConfined(t *testing.T) {
	src := gradientImage(100, 100)
	box := detector.Box{X: 20, Y: 30, Width: 40, Height: 30}

	out := blurRegions(src, []detector.Box{box})

	changed := false
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if inBox(x, y, box) {
				if src.NRGBAAt(x, y) != out.NRGBAAt(x, y) {
					changed = true
				}
			} else {
				require.Equal(t, src.NRGBAAt(x, y), out.NRGBAAt(x, y), "pixel outside box modified at (%d,%d)", x, y)
			}
		}
	}
	assert.True(t, changed, "blur did not modify the region")
}

// re-blurring the same region leaves everything outside it pixel-identical
func TestBlurRegionsIdempotentOutside(t *testing.T) {
	src := gradientImage(100, 100)
	box := detector.Box{X: 10, Y: 10, Width: 50, Height: 50}

	once := blurRegions(src, []detector.Box{box})
	twice := blurRegions(once, []detector.Box{box})

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if !inBox(x, y, box) {
				require.Equal(t, once.NRGBAAt(x, y), twice.NRGBAAt(x, y), "pixel outside box modified at (%d,%d)", x, y)
			}
		}
	}
}

func TestBlurRegionsEmptyBoxes(t *testing.T) {
	src := gradientImage(50, 50)

	out := blurRegions(src, []detector.Box{{X: 10, Y: 10, Width: 0, Height: 0}})
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			require.Equal(t, src.NRGBAAt(x, y), out.NRGBAAt(x, y))
		}
	}

	// no boxes at all is a valid outcome
	out = blurRegions(src, nil)
	require.Equal(t, src.NRGBAAt(25, 25), out.NRGBAAt(25, 25))
}

// a face box at the image edge must pad and clamp without panicking
func TestAnonymizeEdgeBox(t *testing.T) {
	eng := EngineTestFixture()
	eng.Faces = &FixedDetector{Boxes: []detector.Box{{X: 60, Y: 60, Width: 10, Height: 10}}}
	eng.Plates = &FixedDetector{Boxes: []detector.Box{{X: 0, Y: 0, Width: 200, Height: 200}}}

	out, err := eng.anonymizeImage(context.Background(), TestJPEG(64, 64, color.Gray{77}))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestAnonymizeNoDetections(t *testing.T) {
	eng := EngineTestFixture()

	out, err := eng.anonymizeImage(context.Background(), TestJPEG(32, 32, color.Gray{10}))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
