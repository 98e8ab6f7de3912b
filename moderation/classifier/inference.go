package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
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

// InferenceClient calls a hosted-inference endpoint (HuggingFace Inference
// API wire format) for a single configured model. Construct one instance per
// model: toxicity, spam, image safety, zero-shot relevance.
type InferenceClient struct {
	Client   http.Client
	Host     string
	ApiToken string
	Model    string
}

func NewInferenceClient(host, token, model string) InferenceClient {
	return InferenceClient{
		Client:   *util.RobustHTTPClient(),
		Host:     host,
		ApiToken: token,
		Model:    model,
	}
}

var _ TextClassifier = (*InferenceClient)(nil)
var _ ImageClassifier = (*InferenceClient)(nil)
var _ ZeroShotImageClassifier = (*InferenceClient)(nil)

type inferenceTextRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceZeroShotRequest struct {
	Inputs     inferenceZeroShotInputs `json:"inputs"`
	Parameters inferenceZeroShotParams `json:"parameters"`
}

type inferenceZeroShotInputs struct {
	Image string `json:"image"`
}

type inferenceZeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
}

func (c *InferenceClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s", strings.TrimRight(c.Host, "/"), c.Model)
}

func (c *InferenceClient) ClassifyText(ctx context.Context, text string) ([]Result, error) {
	payload, err := json.Marshal(inferenceTextRequest{Inputs: text})
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	// text-classification responses are nested one level: [[{label, score}]]
	var nested [][]Result
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	var flat []Result
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	return flat, nil
}

func (c *InferenceClient) ClassifyImage(ctx context.Context, imageBytes []byte) ([]Result, error) {
	raw, err := c.post(ctx, "application/octet-stream", bytes.NewReader(imageBytes))
	if err != nil {
		return nil, err
	}
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	return results, nil
}

func (c *InferenceClient) ClassifyImageZeroShot(ctx context.Context, imageBytes []byte, labels []string) ([]Result, error) {
	body := inferenceZeroShotRequest{
		Inputs:     inferenceZeroShotInputs{Image: base64.StdEncoding.EncodeToString(imageBytes)},
		Parameters: inferenceZeroShotParams{CandidateLabels: labels},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	return results, nil
}

func (c *InferenceClient) post(ctx context.Context, contentType string, body io.Reader) ([]byte, error) {
	slog.Debug("sending inference request", "model", c.Model)

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "arbiter/"+versioninfo.Short())
	if c.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.ApiToken)
	}

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		inferenceAPIDuration.WithLabelValues(c.Model).Observe(duration.Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %v", err)
	}
	defer res.Body.Close()

	inferenceAPICount.WithLabelValues(c.Model, fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("inference request failed model=%s statusCode=%d", c.Model, res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference resp body: %v", err)
	}
	return respBytes, nil
}
