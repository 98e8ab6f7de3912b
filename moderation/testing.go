package moderation

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/civicsignal/arbiter/media"
	"github.com/civicsignal/arbiter/moderation/classifier"
	"github.com/civicsignal/arbiter/moderation/detector"
	"github.com/civicsignal/arbiter/oracle"

	"github.com/disintegration/imaging"
)

// Test doubles for the engine's capability interfaces, plus a fixture engine
// wired with benign defaults. Intended for tests in this module and for
// downstream integration tests; none of these talk to the network.

type FixedTextClassifier struct {
	Results []classifier.Result
	Err     error
}

func (c *FixedTextClassifier) ClassifyText(ctx context.Context, text string) ([]classifier.Result, error) {
	return c.Results, c.Err
}

type FixedImageClassifier struct {
	Results []classifier.Result
	Err     error
}

func (c *FixedImageClassifier) ClassifyImage(ctx context.Context, imageBytes []byte) ([]classifier.Result, error) {
	return c.Results, c.Err
}

type FixedZeroShotClassifier struct {
	Results []classifier.Result
	Err     error
}

func (c *FixedZeroShotClassifier) ClassifyImageZeroShot(ctx context.Context, imageBytes []byte, labels []string) ([]classifier.Result, error) {
	return c.Results, c.Err
}

type FixedDetector struct {
	Boxes []detector.Box
	Err   error
}

func (d *FixedDetector) Detect(ctx context.Context, imageBytes []byte) ([]detector.Box, error) {
	return d.Boxes, d.Err
}

// FakeVideoSource serves canned probe info and frames keyed by frame index.
type FakeVideoSource struct {
	Info     *media.Info
	ProbeErr error
	Frames   map[int][]byte
}

func (s *FakeVideoSource) Probe(ctx context.Context, path string) (*media.Info, error) {
	return s.Info, s.ProbeErr
}

func (s *FakeVideoSource) ReadFrameJPEG(ctx context.Context, path string, frameIndex int) ([]byte, error) {
	frame, ok := s.Frames[frameIndex]
	if !ok {
		return nil, fmt.Errorf("no frame at index %d", frameIndex)
	}
	return frame, nil
}

// EngineTestFixture returns an engine whose capabilities approve everything:
// non-toxic, non-spam text, a safe and relevant image, no detections, and a
// working throwaway signer. Tests override individual fields to exercise
// rejection paths.
func EngineTestFixture() Engine {
	signer, err := oracle.GenerateK256Signer()
	if err != nil {
		panic(err)
	}
	return Engine{
		Logger:   slog.Default(),
		Toxicity: &FixedTextClassifier{Results: []classifier.Result{{Label: "toxic", Score: 0.03}}},
		Spam:     &FixedTextClassifier{Results: []classifier.Result{{Label: "LABEL_0", Score: 0.99}}},
		ImageSafety: &FixedImageClassifier{Results: []classifier.Result{
			{Label: "normal", Score: 0.98},
			{Label: "nsfw", Score: 0.02},
		}},
		Relevance: &FixedZeroShotClassifier{Results: []classifier.Result{
			{Label: "a photo of a pothole", Score: 0.9},
			{Label: "broken road", Score: 0.05},
			{Label: "a selfie", Score: 0.02},
		}},
		Faces:  &FixedDetector{},
		Plates: &FixedDetector{},
		Signer: signer,
	}
}

// TestJPEG renders a solid-color JPEG for use as image or frame fixture data.
func TestJPEG(width, height int, c color.Color) []byte {
	img := imaging.New(width, height, c)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
