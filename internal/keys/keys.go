// Package keys produces the WireGuard key material for a client: a private
// key, the public key derived from it and a random preshared key.
package keys

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// Sentinel errors returned (wrapped) by providers.
var (
	ErrEmptyPrivateKey = errors.New("private key is empty")
	ErrInvalidKey      = errors.New("malformed WireGuard key")
	ErrEntropy         = errors.New("entropy source failed")
)

// KeyMaterial is the freshly generated set of keys for one client.
type KeyMaterial struct {
	PrivateKey   string
	PublicKey    string
	PresharedKey string
}

// Validate fails if any key is missing.
func (k KeyMaterial) Validate() error {
	switch {
	case k.PrivateKey == "":
		return fmt.Errorf("private key: %w", ErrEmptyPrivateKey)
	case k.PublicKey == "":
		return errors.New("public key is empty")
	case k.PresharedKey == "":
		return errors.New("preshared key is empty")
	}
	return nil
}

// Provider generates WireGuard keys.
type Provider interface {
	GeneratePrivateKey(ctx context.Context) (string, error)
	GeneratePublicKey(ctx context.Context, privateKey string) (string, error)
	GeneratePresharedKey() (string, error)
}

// Generate runs the provider in dependency order (private, public, preshared)
// and stops at the first failure, so a failed private key never reaches
// derivation.
func Generate(ctx context.Context, p Provider) (KeyMaterial, error) {
	privateKey, err := p.GeneratePrivateKey(ctx)
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	if privateKey == "" {
		return KeyMaterial{}, fmt.Errorf("failed to generate private key: %w", ErrEmptyPrivateKey)
	}

	publicKey, err := p.GeneratePublicKey(ctx, privateKey)
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("failed to generate public key: %w", err)
	}

	presharedKey, err := p.GeneratePresharedKey()
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("failed to generate preshared key: %w", err)
	}

	km := KeyMaterial{
		PrivateKey:   privateKey,
		PublicKey:    publicKey,
		PresharedKey: presharedKey,
	}
	if err := km.Validate(); err != nil {
		return KeyMaterial{}, err
	}
	return km, nil
}

// presharedKeyFrom draws a 32-byte key from r and returns it base64 encoded.
func presharedKeyFrom(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, wgtypes.KeyLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	key, err := wgtypes.NewKey(buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return key.String(), nil
}

// ParseKey checks that s is a base64 encoded 32-byte WireGuard key.
func ParseKey(s string) (wgtypes.Key, error) {
	key, err := wgtypes.ParseKey(s)
	if err != nil {
		return wgtypes.Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// Truncate shortens a key for log output.
func Truncate(key string) string {
	if len(key) > 8 {
		return key[:8] + "..."
	}
	return key
}
