package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegSource implements Source with the ffmpeg and ffprobe binaries.
type FFmpegSource struct{}

var _ Source = (*FFmpegSource)(nil)

func NewFFmpegSource() *FFmpegSource {
	return &FFmpegSource{}
}

func (s *FFmpegSource) Probe(ctx context.Context, path string) (*Info, error) {
	data, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	stream := gjson.Get(data, `streams.#(codec_type=="video")`)
	if !stream.Exists() {
		return nil, fmt.Errorf("no video stream found")
	}

	rate := parseFrameRate(stream.Get("r_frame_rate").String())
	frames := int(stream.Get("nb_frames").Int())
	if frames == 0 {
		// some containers don't carry nb_frames; estimate from duration
		duration := stream.Get("duration").Float()
		if duration == 0 {
			duration = gjson.Get(data, "format.duration").Float()
		}
		frames = int(duration * rate)
	}

	slog.Debug("probed video", "path", path, "frames", frames, "rate", rate)
	return &Info{FrameCount: frames, FrameRate: rate}, nil
}

// r_frame_rate is a rational like "30000/1001"
func parseFrameRate(raw string) float64 {
	parts := strings.SplitN(raw, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

func (s *FFmpegSource) ReadFrameJPEG(ctx context.Context, path string, frameIndex int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	err := ffmpeg.Input(path).
		Filter("select", ffmpeg.Args{fmt.Sprintf("gte(n,%d)", frameIndex)}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
		WithOutput(buf).
		Silent(true).
		Run()
	if err != nil {
		return nil, fmt.Errorf("frame extraction failed at index %d: %w", frameIndex, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("no frame data at index %d", frameIndex)
	}
	return buf.Bytes(), nil
}
