// Package media wraps video probing and keyframe extraction. The production
// implementation shells out to ffmpeg/ffprobe, which requires the video to
// exist as a file on disk; callers own the temp-file lifecycle.
package media

import (
	"context"
)

// Info describes a probed video.
type Info struct {
	FrameCount int
	FrameRate  float64
}

// Duration returns the video length in seconds, or 0 when the frame rate is
// unknown.
func (i Info) Duration() float64 {
	if i.FrameRate > 0 {
		return float64(i.FrameCount) / i.FrameRate
	}
	return 0
}

// Source probes videos and extracts single frames as JPEG bytes.
//
// A Probe error means the file is not a decodable video. A ReadFrameJPEG
// error marks only that frame as unreadable; callers may skip it.
type Source interface {
	Probe(ctx context.Context, path string) (*Info, error)
	ReadFrameJPEG(ctx context.Context, path string, frameIndex int) ([]byte, error)
}
