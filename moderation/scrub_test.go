package moderation

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrubMetadataReencodes(t *testing.T) {
	// PNG in, JPEG out: only pixel data survives the round trip
	img := imaging.New(20, 20, color.NRGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out := ScrubMetadata(buf.Bytes())
	require.NotEmpty(t, out)
	assert.Equal(t, []byte{0xff, 0xd8}, out[:2], "expected JPEG magic")

	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, decoded.Bounds().Dx())
}

func TestScrubMetadataBestEffort(t *testing.T) {
	// undecodable input comes back unchanged, never an error
	raw := []byte("not an image at all")
	out := ScrubMetadata(raw)
	assert.Equal(t, raw, out)
}
