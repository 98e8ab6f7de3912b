package moderation

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/civicsignal/arbiter/moderation/classifier"
	"github.com/civicsignal/arbiter/moderation/detector"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageInvalid(t *testing.T) {
	eng := EngineTestFixture()

	dec, err := eng.evaluateImage(context.Background(), []byte("definitely not an image"))
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, "Invalid image file", dec.Reason)
	assert.Equal(t, 0.0, dec.Score)
	assert.Nil(t, dec.Media)
}

func TestImageNSFW(t *testing.T) {
	eng := EngineTestFixture()
	eng.ImageSafety = &FixedImageClassifier{Results: []classifier.Result{
		{Label: "nsfw", Score: 0.91},
		{Label: "normal", Score: 0.09},
	}}

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, "NSFW content detected", dec.Reason)
	assert.InDelta(t, 0.91, dec.Score, 0.0001)

	// the image path uses the permissive 0.8 threshold
	eng.ImageSafety = &FixedImageClassifier{Results: []classifier.Result{
		{Label: "nsfw", Score: 0.7},
		{Label: "normal", Score: 0.3},
	}}
	dec, err = eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.True(t, dec.Approved)
}

func TestImageIrrelevant(t *testing.T) {
	eng := EngineTestFixture()
	eng.Relevance = &FixedZeroShotClassifier{Results: []classifier.Result{
		{Label: "food", Score: 0.8},
		{Label: "a pet", Score: 0.1},
		{Label: "screenshot", Score: 0.05},
	}}

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Contains(t, dec.Reason, "irrelevant")
	assert.Contains(t, dec.Reason, "food")
	assert.InDelta(t, 0.8, dec.Score, 0.0001)
}

func TestImagePersonalPhoto(t *testing.T) {
	eng := EngineTestFixture()
	eng.Relevance = &FixedZeroShotClassifier{Results: []classifier.Result{
		{Label: "a selfie", Score: 0.75},
		{Label: "a face", Score: 0.15},
		{Label: "food", Score: 0.05},
		{Label: "broken road", Score: 0.03},
	}}

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Contains(t, dec.Reason, "Personal photo")
	assert.InDelta(t, 0.75, dec.Score, 0.0001)
}

// a person in frame is tolerated when civic content ranks in the top 3
func TestImagePersonalPhotoWithCivicContent(t *testing.T) {
	eng := EngineTestFixture()
	eng.Relevance = &FixedZeroShotClassifier{Results: []classifier.Result{
		{Label: "a face", Score: 0.55},
		{Label: "a photo of a pothole", Score: 0.4},
		{Label: "food", Score: 0.03},
	}}

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.True(t, dec.Approved)
	assert.InDelta(t, 0.55, dec.Score, 0.0001)
	assert.NotEmpty(t, dec.Media)
}

func TestImageApprove(t *testing.T) {
	assert := assert.New(t)
	eng := EngineTestFixture()

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.NRGBA{200, 100, 50, 255}))
	require.NoError(t, err)
	assert.True(dec.Approved)
	assert.Contains(dec.Reason, "Valid evidence")
	assert.Contains(dec.Reason, "a photo of a pothole")
	assert.InDelta(0.9, dec.Score, 0.0001)

	// processed media is a decodable JPEG
	require.NotEmpty(t, dec.Media)
	img, err := imaging.Decode(bytes.NewReader(dec.Media))
	require.NoError(t, err)
	assert.Equal(64, img.Bounds().Dx())
}

func TestImageApproveWithFaceBlur(t *testing.T) {
	eng := EngineTestFixture()
	eng.Faces = &FixedDetector{Boxes: []detector.Box{{X: 10, Y: 10, Width: 20, Height: 20}}}

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.True(t, dec.Approved)
	require.NotEmpty(t, dec.Media)
	_, err = imaging.Decode(bytes.NewReader(dec.Media))
	require.NoError(t, err)
}

// missing detectors degrade to no blurring, never to a failure
func TestImageApproveDetectorsUnavailable(t *testing.T) {
	eng := EngineTestFixture()
	eng.Faces = &FixedDetector{Err: detector.ErrUnavailable}
	eng.Plates = nil

	dec, err := eng.evaluateImage(context.Background(), TestJPEG(64, 64, color.Gray{128}))
	require.NoError(t, err)
	assert.True(t, dec.Approved)
	assert.NotEmpty(t, dec.Media)
}
