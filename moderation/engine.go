package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicsignal/arbiter/media"
	"github.com/civicsignal/arbiter/moderation/classifier"
	"github.com/civicsignal/arbiter/moderation/detector"
	"github.com/civicsignal/arbiter/oracle"
)

// Runtime for evaluating submissions and attesting approvals.
//
// All capability fields are read-only after construction. Toxicity, Spam,
// ImageSafety and Relevance must be non-nil; Faces, Plates and Signer are
// optional (nil means unavailable), and Video is only required when video
// submissions are expected.
type Engine struct {
	Logger      *slog.Logger
	Toxicity    classifier.TextClassifier
	Spam        classifier.TextClassifier
	ImageSafety classifier.ImageClassifier
	Relevance   classifier.ZeroShotImageClassifier
	Faces       detector.Detector
	Plates      detector.Detector
	Signer      oracle.Signer
	Video       media.Source
}

const approvedReason = "Content is safe and approved for civic reporting"

// ProcessReport runs the full pipeline for one submission: text evaluation
// always; image or video evaluation when media is attached; attestation
// signing only when everything passed.
//
// Rejections are returned as a normal Result. An error means the request
// failed for infrastructure reasons (capability fault, or an approval that
// could not be attested) and no Result is produced.
func (eng *Engine) ProcessReport(ctx context.Context, req *Request) (res *Result, err error) {
	// similar to an HTTP server, we want to recover any panics from evaluator execution
	defer func() {
		if r := recover(); r != nil {
			eng.logger().Error("moderation pipeline exception", "err", r)
			res = nil
			err = fmt.Errorf("moderation pipeline failure: %v", r)
		}
	}()

	start := time.Now()
	modality := "text"
	if len(req.Media) > 0 {
		modality = string(req.Modality)
	}
	defer func() {
		pipelineDuration.WithLabelValues(modality).Observe(time.Since(start).Seconds())
	}()

	textDec, err := eng.evaluateText(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	if !textDec.Approved {
		eng.logger().Info("text rejected", "reason", textDec.Reason, "score", textDec.Score)
		decisionCount.WithLabelValues(modality, "reject").Inc()
		return rejectResult(textDec), nil
	}

	var safeImage []byte
	if len(req.Media) > 0 {
		var mediaDec *Decision
		switch req.Modality {
		case ModalityVideo:
			mediaDec, err = eng.evaluateVideo(ctx, req.Media)
		default:
			mediaDec, err = eng.evaluateImage(ctx, req.Media)
		}
		if err != nil {
			return nil, err
		}
		if !mediaDec.Approved {
			eng.logger().Info("media rejected", "modality", modality, "reason", mediaDec.Reason, "score", mediaDec.Score)
			decisionCount.WithLabelValues(modality, "reject").Inc()
			return rejectResult(mediaDec), nil
		}
		safeImage = mediaDec.Media
	}

	if eng.Signer == nil {
		return nil, fmt.Errorf("cannot attest approved content: %w", oracle.ErrNotConfigured)
	}
	// sign the original submitted text, exactly as received
	att, err := eng.Signer.Sign(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("attestation failed: %w", err)
	}

	decisionCount.WithLabelValues(modality, "approve").Inc()
	eng.logger().Info("content approved", "modality", modality, "score", textDec.Score, "signer", att.Address)

	return &Result{
		Decision: VerdictApprove,
		Reason:   approvedReason,
		// the approval confidence is always the text-safety score, even when
		// media was evaluated; the attested object is the text
		Score:           textDec.Score,
		Signature:       att.Signature,
		SignerAddress:   att.Address,
		SafeImageBase64: encodeMedia(safeImage),
	}, nil
}

func (eng *Engine) logger() *slog.Logger {
	if eng.Logger != nil {
		return eng.Logger
	}
	return slog.Default()
}
