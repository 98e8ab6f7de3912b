package moderation

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/disintegration/imaging"
)

const nsfwImageThreshold = 0.8

// candidate set for zero-shot relevance ranking
var relevanceLabels = []string{
	"a photo of a pothole",
	"garbage pile",
	"broken road",
	"street light",
	"public infrastructure",
	"a selfie",
	"a face",
	"a pet",
	"food",
	"screenshot",
}

// labels that count as civic evidence
var civicLabels = []string{
	"a photo of a pothole",
	"garbage pile",
	"broken road",
	"street light",
	"public infrastructure",
}

// labels indicating the photo is primarily of a person
var personalLabels = []string{
	"a face",
	"a selfie",
}

// Validates the image, then anonymizes it: decode, metadata scrub (best
// effort), NSFW check, zero-shot relevance decision table, face/plate blur.
// Approvals carry the processed JPEG bytes.
func (eng *Engine) evaluateImage(ctx context.Context, imageBytes []byte) (*Decision, error) {
	if _, err := imaging.Decode(bytes.NewReader(imageBytes)); err != nil {
		return reject("Invalid image file", 0.0), nil
	}

	imageBytes = ScrubMetadata(imageBytes)

	safetyResults, err := eng.ImageSafety.ClassifyImage(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("image safety classification failed: %w", err)
	}
	for _, res := range safetyResults {
		if res.Label == "nsfw" && res.Score > nsfwImageThreshold {
			return reject("NSFW content detected", res.Score), nil
		}
	}

	relevanceResults, err := eng.Relevance.ClassifyImageZeroShot(ctx, imageBytes, relevanceLabels)
	if err != nil {
		return nil, fmt.Errorf("relevance classification failed: %w", err)
	}
	if len(relevanceResults) == 0 {
		return nil, fmt.Errorf("relevance classifier returned no results")
	}
	top := relevanceResults[0]

	switch {
	case slices.Contains(civicLabels, top.Label):
		// civic evidence, proceed
	case slices.Contains(personalLabels, top.Label):
		// a person in frame is fine if civic content still ranks in the top 3
		hasInfrastructure := false
		for _, res := range relevanceResults[:min(3, len(relevanceResults))] {
			if slices.Contains(civicLabels, res.Label) {
				hasInfrastructure = true
				break
			}
		}
		if !hasInfrastructure {
			return reject(fmt.Sprintf("Personal photo detected (no civic content): %s", top.Label), top.Score), nil
		}
	default:
		return reject(fmt.Sprintf("Image is irrelevant (detected: %s)", top.Label), top.Score), nil
	}

	processed, err := eng.anonymizeImage(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	return approveWithMedia(fmt.Sprintf("Valid evidence: %s", top.Label), top.Score, processed), nil
}
