package detector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxPadClamp(t *testing.T) {
	assert := assert.New(t)

	// box near the top-left corner: padding must clamp at zero
	b := Box{X: 5, Y: 5, Width: 50, Height: 40}
	padded := b.Pad(10, 10, 100, 100)
	assert.Equal(0, padded.X)
	assert.Equal(0, padded.Y)
	assert.Equal(65, padded.Width)  // 50 + 2*10, not truncated on the right
	assert.Equal(60, padded.Height) // 40 + 2*10

	// box near the bottom-right edge: width/height must be truncated
	b = Box{X: 80, Y: 90, Width: 30, Height: 30}
	padded = b.Pad(5, 5, 100, 100)
	assert.Equal(75, padded.X)
	assert.Equal(85, padded.Y)
	assert.LessOrEqual(padded.X+padded.Width, 100)
	assert.LessOrEqual(padded.Y+padded.Height, 100)

	// fully out-of-bounds box collapses to empty rather than inverting
	b = Box{X: 200, Y: 200, Width: 10, Height: 10}
	clamped := b.Clamp(100, 100)
	assert.True(clamped.Empty())
}

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect/face", r.URL.Path)
		w.Write([]byte(`{"boxes":[{"x":10,"y":20,"width":30,"height":40}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "face")
	boxes, err := c.Detect(context.Background(), []byte{0xff, 0xd8})
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, Box{X: 10, Y: 20, Width: 30, Height: 40}, boxes[0])
}

func TestClientUnconfigured(t *testing.T) {
	c := NewClient("", "plate")
	_, err := c.Detect(context.Background(), []byte{0xff, 0xd8})
	require.ErrorIs(t, err, ErrUnavailable)
}
