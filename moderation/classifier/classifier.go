// Package classifier defines the classification capabilities the moderation
// engine consumes, and an HTTP client implementation speaking the common
// hosted-inference API shape.
//
// All classifiers are read-only and safe for concurrent use; the engine treats
// them as process-wide singletons configured once at startup.
package classifier

import (
	"context"
)

// Result is a single classification outcome: a label and a confidence score
// in [0,1]. When a classifier returns multiple results, ordering is
// classifier-defined; the zero-shot image classifier always ranks descending
// by score.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TextClassifier scores a text string against a fixed label set (eg, toxicity
// or spam models).
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) ([]Result, error)
}

// ImageClassifier scores raw image bytes against a fixed label set (eg, NSFW
// safety models).
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, imageBytes []byte) ([]Result, error)
}

// ZeroShotImageClassifier matches raw image bytes against an arbitrary
// candidate label set, returning all candidates ranked descending by score.
type ZeroShotImageClassifier interface {
	ClassifyImageZeroShot(ctx context.Context, imageBytes []byte, labels []string) ([]Result, error)
}
