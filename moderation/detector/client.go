package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/civicsignal/arbiter/util"

	"github.com/carlmjohnson/versioninfo"
)

// Client calls a detection sidecar (eg, a YuNet face model or a legacy Haar
// plate cascade served over HTTP). The sidecar accepts raw image bytes and
// returns detected boxes as JSON.
type Client struct {
	Client http.Client
	Host   string
	Kind   string // "face" or "plate"; used for the endpoint path and metrics
}

func NewClient(host, kind string) Client {
	return Client{
		Client: *util.RobustHTTPClient(),
		Host:   host,
		Kind:   kind,
	}
}

var _ Detector = (*Client)(nil)

type detectResp struct {
	Boxes []Box `json:"boxes"`
}

func (c *Client) Detect(ctx context.Context, imageBytes []byte) ([]Box, error) {
	if c.Host == "" {
		return nil, ErrUnavailable
	}

	slog.Debug("sending image to detector", "kind", c.Kind, "size", len(imageBytes))

	endpoint := fmt.Sprintf("%s/detect/%s", strings.TrimRight(c.Host, "/"), c.Kind)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(imageBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "arbiter/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		detectorAPIDuration.WithLabelValues(c.Kind).Observe(duration.Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request failed: %v", err)
	}
	defer res.Body.Close()

	detectorAPICount.WithLabelValues(c.Kind, fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("detector request failed kind=%s statusCode=%d", c.Kind, res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector resp body: %v", err)
	}

	var respObj detectResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("failed to decode detector response: %w", err)
	}
	return respObj.Boxes, nil
}
