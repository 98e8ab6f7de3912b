// Package moderation implements the content-safety decision pipeline for
// civic report submissions: an ordered cascade of text checks, an image
// safety/relevance/anonymization flow, and a stricter keyframe-sampled video
// flow, orchestrated into a single terminal decision per request.
//
// The Engine holds all leaf capabilities (classifiers, detectors, signer,
// video source) as injected interfaces. They are read-only after construction
// and safe for concurrent use, so independent requests can be processed in
// parallel with no shared mutable state.
//
// Expected policy outcomes (rejections) are Decision values, not errors;
// only infrastructure faults (capability failures, unconfigured signer)
// surface as errors from ProcessReport.
package moderation
