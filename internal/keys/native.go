package keys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
)

// NativeProvider generates keys in-process with Curve25519, for hosts
// without wireguard-tools installed.
type NativeProvider struct {
	entropy io.Reader
}

// NewNativeProvider creates a provider backed by crypto/rand.
func NewNativeProvider() *NativeProvider {
	return &NativeProvider{entropy: rand.Reader}
}

// SetEntropySource overrides the random source (tests).
func (p *NativeProvider) SetEntropySource(r io.Reader) {
	p.entropy = r
}

// GeneratePrivateKey returns a clamped Curve25519 scalar, base64 encoded.
func (p *NativeProvider) GeneratePrivateKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var key [32]byte
	if _, err := io.ReadFull(p.source(), key[:]); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}

	key[0] &= 248
	key[31] &= 127
	key[31] |= 64

	return base64.StdEncoding.EncodeToString(key[:]), nil
}

// GeneratePublicKey derives the public key for a base64 private key.
func (p *NativeProvider) GeneratePublicKey(ctx context.Context, privateKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if privateKey == "" {
		return "", ErrEmptyPrivateKey
	}
	priv, err := ParseKey(privateKey)
	if err != nil {
		return "", err
	}

	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return "", fmt.Errorf("failed to derive public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(pub), nil
}

// GeneratePresharedKey returns 32 random bytes, base64 encoded.
func (p *NativeProvider) GeneratePresharedKey() (string, error) {
	return presharedKeyFrom(p.source())
}

func (p *NativeProvider) source() io.Reader {
	if p.entropy == nil {
		return rand.Reader
	}
	return p.entropy
}
