package moderation

import (
	"bytes"
	"log/slog"

	"github.com/disintegration/imaging"
)

const jpegQuality = 90

// ScrubMetadata produces a copy of the image containing only pixel data,
// re-encoded as JPEG; EXIF blocks (GPS position, timestamps, device info) do
// not survive the round trip. Best effort: on any decode or encode failure
// the original bytes are returned unchanged, and the submission is never
// rejected for it.
func ScrubMetadata(imageBytes []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		slog.Debug("metadata scrub skipped, undecodable image", "err", err)
		return imageBytes
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		slog.Debug("metadata scrub skipped, re-encode failed", "err", err)
		return imageBytes
	}
	return buf.Bytes()
}
