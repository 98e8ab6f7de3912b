package oracle

import (
	"context"
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	secp256k1secec "gitlab.com/yawning/secp256k1-voi/secec"
	"golang.org/x/crypto/sha3"
)

// K256Signer signs personal messages with a secp256k1 key held in memory.
type K256Signer struct {
	priv    *secp256k1secec.PrivateKey
	address string
}

var _ Signer = (*K256Signer)(nil)

var k256Options = &secp256k1secec.ECDSAOptions{
	// Used to declare the digest size, not to re-hash
	Hash: crypto.SHA256,
	// Use `[R | S]` encoding.
	Encoding: secp256k1secec.EncodingCompact,
	// Always produce/require "low-S" signatures so a given message has a
	// single canonical signature.
	RejectMalleable: true,
}

// Loads a K256Signer from a hex-encoded 32-byte private key, with or without
// a leading "0x".
func NewK256Signer(privHex string) (*K256Signer, error) {
	privHex = strings.TrimPrefix(strings.TrimSpace(privHex), "0x")
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key hex: %w", err)
	}
	priv, err := secp256k1secec.NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid K-256/secp256k1 signing key: %w", err)
	}
	s := &K256Signer{priv: priv}
	s.address = deriveAddress(priv)
	return s, nil
}

// Creates a signer with a fresh random key. Mostly useful for tests and local
// development; production deployments load a persistent key.
func GenerateK256Signer() (*K256Signer, error) {
	priv, err := secp256k1secec.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("K-256/secp256k1 key generation failed: %w", err)
	}
	return &K256Signer{priv: priv, address: deriveAddress(priv)}, nil
}

// The address is the last 20 bytes of the Keccak-256 digest of the
// uncompressed public key point (without the 0x04 prefix byte), rendered in
// the EIP-55 mixed-case checksum encoding.
func deriveAddress(priv *secp256k1secec.PrivateKey) string {
	uncompressed := priv.PublicKey().Point().UncompressedBytes()
	digest := keccak256(uncompressed[1:])
	return checksumAddress(digest[12:])
}

// EIP-55: a hex letter is upper-cased when the matching nibble of the
// Keccak-256 digest of the lower-case hex address is >= 8.
func checksumAddress(addr []byte) string {
	out := []byte(hex.EncodeToString(addr))
	digest := keccak256(out)
	for i, ch := range out {
		if ch < 'a' || ch > 'f' {
			continue
		}
		nibble := digest[i/2] >> 4
		if i%2 == 1 {
			nibble = digest[i/2] & 0x0f
		}
		if nibble >= 8 {
			out[i] = ch - ('a' - 'A')
		}
	}
	return "0x" + string(out)
}

// Address returns the signer's identity with a leading "0x".
func (s *K256Signer) Address() string {
	return s.address
}

// Sign wraps the text in the personal-message prefix, hashes with Keccak-256,
// and signs the digest. The signature is the 64-byte "low-S" compact `[R | S]`
// encoding, hex encoded without a "0x" prefix.
func (s *K256Signer) Sign(ctx context.Context, text string) (*Attestation, error) {
	digest := personalDigest(text)
	sig, err := s.priv.Sign(rand.Reader, digest, k256Options)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	return &Attestation{
		Signature: hex.EncodeToString(sig),
		Address:   s.address,
	}, nil
}

// Verify checks a hex signature produced by Sign against this signer's public
// key, returning nil for valid signatures.
func (s *K256Signer) Verify(text, sigHex string) error {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	digest := personalDigest(text)
	if !s.priv.PublicKey().Verify(digest, sig, k256Options) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

// The standard prefix binds signatures to this convention, so they can not be
// replayed as transactions or other signed structures.
func personalDigest(text string) []byte {
	msg := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(text)) + text
	return keccak256([]byte(msg))
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
