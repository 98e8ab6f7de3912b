package moderation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/civicsignal/arbiter/moderation/detector"
)

const (
	nsfwVideoThreshold  = 0.5
	maxVideoDurationSec = 20.0
)

// Stricter, reject-only policy for video: no blurring is attempted, so any
// detected face rejects the submission. Keyframes at 10%, 50% and 90% of the
// frame count are sampled; unreadable frames are skipped without penalty.
//
// Frame extraction needs the video on disk; the temp file is removed on every
// exit path.
func (eng *Engine) evaluateVideo(ctx context.Context, videoBytes []byte) (*Decision, error) {
	if eng.Video == nil {
		return nil, fmt.Errorf("no video source configured")
	}

	tmp, err := os.CreateTemp("", "arbiter-video-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("creating temp video file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(videoBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp video file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("writing temp video file: %w", err)
	}

	info, err := eng.Video.Probe(ctx, tmp.Name())
	if err != nil || info.FrameCount == 0 {
		return reject("Invalid video file", 0.0), nil
	}

	if info.Duration() > maxVideoDurationSec {
		return reject("Video too long (max 20s)", 0.0), nil
	}

	samplePoints := []int{
		int(float64(info.FrameCount) * 0.1),
		int(float64(info.FrameCount) * 0.5),
		int(float64(info.FrameCount) * 0.9),
	}

	for _, frameIdx := range samplePoints {
		frame, err := eng.Video.ReadFrameJPEG(ctx, tmp.Name(), frameIdx)
		if err != nil {
			eng.logger().Debug("skipping unreadable video frame", "index", frameIdx, "err", err)
			continue
		}

		safetyResults, err := eng.ImageSafety.ClassifyImage(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("video frame safety classification failed: %w", err)
		}
		if len(safetyResults) > 0 {
			if top := safetyResults[0]; top.Label == "nsfw" && top.Score > nsfwVideoThreshold {
				return reject("NSFW content in video", 1.0), nil
			}
		}

		if eng.Faces != nil {
			boxes, err := eng.Faces.Detect(ctx, frame)
			if errors.Is(err, detector.ErrUnavailable) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("video frame face detection failed: %w", err)
			}
			if len(boxes) > 0 {
				return reject("Video contains people (privacy policy)", 1.0), nil
			}
		}
	}

	// keyframe analysis never yields a meaningful confidence
	return approve("Video content appears safe (keyframe analysis)", 0.0), nil
}
