// Package oracle provides the attestation capability: signing approved report
// text so that the decision is independently verifiable against the signer's
// published address.
//
// The signing convention is the Ethereum "personal message" scheme: the exact
// approved text (no normalization or truncation) is wrapped in the standard
// prefix, hashed with Keccak-256, and signed with a K-256 / secp256k1 key.
package oracle

import (
	"context"
	"errors"
)

// ErrNotConfigured indicates no signing key is available. Approvals cannot be
// attested; this must surface as a service-configuration failure, never as an
// implicit approval.
var ErrNotConfigured = errors.New("oracle signer not configured")

// Attestation is a signature over approved text plus the signer's identity.
type Attestation struct {
	Signature string `json:"signature"`
	Address   string `json:"address"`
}

// Signer produces attestations for approved content.
type Signer interface {
	Sign(ctx context.Context, text string) (*Attestation, error)
	Address() string
}
