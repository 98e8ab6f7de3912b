package moderation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/civicsignal/arbiter/moderation/detector"

	"github.com/disintegration/imaging"
)

// heavy enough that neither identity nor text survives the blur
const blurSigma = 30.0

// Detects and blurs faces and license plates in the image, returning
// re-encoded JPEG bytes. Face boxes are padded by 10% of their size on each
// axis (so the whole head is covered) and clamped to the image bounds; plate
// boxes are blurred as reported. Either detector being unavailable degrades
// that step to a no-op. Absence of detections is a valid outcome: the image
// comes back unmodified apart from re-encoding.
func (eng *Engine) anonymizeImage(ctx context.Context, imageBytes []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding image for anonymization: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	faceBoxes, err := eng.detectRegions(ctx, eng.Faces, imageBytes, "face")
	if err != nil {
		return nil, err
	}
	plateBoxes, err := eng.detectRegions(ctx, eng.Plates, imageBytes, "plate")
	if err != nil {
		return nil, err
	}

	var faces []detector.Box
	for _, box := range faceBoxes {
		faces = append(faces, box.Pad(box.Width/10, box.Height/10, w, h))
	}
	var plates []detector.Box
	for _, box := range plateBoxes {
		plates = append(plates, box.Clamp(w, h))
	}

	out := blurRegions(img, append(faces, plates...))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encoding anonymized image: %w", err)
	}
	return buf.Bytes(), nil
}

func (eng *Engine) detectRegions(ctx context.Context, det detector.Detector, imageBytes []byte, kind string) ([]detector.Box, error) {
	if det == nil {
		return nil, nil
	}
	boxes, err := det.Detect(ctx, imageBytes)
	if errors.Is(err, detector.ErrUnavailable) {
		eng.logger().Debug("detector unavailable, skipping", "kind", kind)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s detection failed: %w", kind, err)
	}
	return boxes, nil
}

// Applies a strong Gaussian blur to each box, leaving all pixels outside the
// boxes untouched. Boxes are assumed already clamped to the image bounds.
func blurRegions(img image.Image, boxes []detector.Box) *image.NRGBA {
	out := imaging.Clone(img)
	for _, box := range boxes {
		if box.Empty() {
			continue
		}
		rect := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height)
		region := imaging.Crop(out, rect)
		blurred := imaging.Blur(region, blurSigma)
		out = imaging.Paste(out, blurred, rect.Min)
	}
	return out
}
