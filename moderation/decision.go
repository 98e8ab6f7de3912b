package moderation

import (
	"encoding/base64"
)

type Verdict string

const (
	VerdictApprove = Verdict("APPROVE")
	VerdictReject  = Verdict("REJECT")
)

// Modality is the declared type of an attached media payload. It is inferred
// from the file name by the transport layer and treated as trusted here.
type Modality string

const (
	ModalityImage = Modality("image")
	ModalityVideo = Modality("video")
)

// Request is a single moderation submission: required text, optional media.
type Request struct {
	Text     string
	Media    []byte
	Modality Modality
}

// Decision is the terminal outcome of one evaluator. Rejections never carry
// media; use the constructors to preserve that invariant.
type Decision struct {
	Approved bool
	Reason   string
	Score    float64

	// processed (anonymized, metadata-stripped) image bytes; only set on
	// approval of an image evaluation, never for video
	Media []byte
}

func reject(reason string, score float64) *Decision {
	return &Decision{Approved: false, Reason: reason, Score: score}
}

func approve(reason string, score float64) *Decision {
	return &Decision{Approved: true, Reason: reason, Score: score}
}

func approveWithMedia(reason string, score float64, media []byte) *Decision {
	return &Decision{Approved: true, Reason: reason, Score: score, Media: media}
}

// Result is the response-facing record for a moderation request. Signature
// and SignerAddress are present exactly when the decision is APPROVE.
type Result struct {
	Decision        Verdict `json:"decision"`
	Reason          string  `json:"reason"`
	Score           float64 `json:"score"`
	Signature       string  `json:"signature,omitempty"`
	SignerAddress   string  `json:"signer_address,omitempty"`
	SafeImageBase64 string  `json:"safe_image_base64,omitempty"`
}

func rejectResult(dec *Decision) *Result {
	return &Result{
		Decision: VerdictReject,
		Reason:   dec.Reason,
		Score:    dec.Score,
	}
}

func encodeMedia(media []byte) string {
	if len(media) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(media)
}
