package keys

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zoro11031/wg-provision/internal/system"
)

// DefaultTool is the WireGuard control binary used when none is configured.
const DefaultTool = "wg"

// ToolProvider shells out to `wg genkey` and `wg pubkey`.
// The private key is handed to `wg pubkey` on stdin so it never shows up in
// the process list.
type ToolProvider struct {
	runner  system.CommandRunner
	tool    string
	timeout time.Duration
	entropy io.Reader
}

// NewToolProvider creates a provider running tool through runner. Each call
// is bounded by timeout when it is positive.
func NewToolProvider(runner system.CommandRunner, tool string, timeout time.Duration) *ToolProvider {
	if tool == "" {
		tool = DefaultTool
	}
	return &ToolProvider{
		runner:  runner,
		tool:    tool,
		timeout: timeout,
	}
}

// SetEntropySource overrides the reader used for preshared keys (tests).
func (p *ToolProvider) SetEntropySource(r io.Reader) {
	p.entropy = r
}

// GeneratePrivateKey runs `<tool> genkey`.
func (p *ToolProvider) GeneratePrivateKey(ctx context.Context) (string, error) {
	return p.run(ctx, nil, "genkey")
}

// GeneratePublicKey runs `<tool> pubkey` with privateKey on stdin.
func (p *ToolProvider) GeneratePublicKey(ctx context.Context, privateKey string) (string, error) {
	privateKey = strings.TrimSpace(privateKey)
	if privateKey == "" {
		return "", ErrEmptyPrivateKey
	}
	return p.run(ctx, strings.NewReader(privateKey+"\n"), "pubkey")
}

// GeneratePresharedKey returns 32 random bytes, base64 encoded.
func (p *ToolProvider) GeneratePresharedKey() (string, error) {
	return presharedKeyFrom(p.entropy)
}

func (p *ToolProvider) run(ctx context.Context, stdin io.Reader, subcommand string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, err := p.runner.Run(ctx, stdin, p.tool, subcommand)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s %s: %w", p.tool, subcommand, ctxErr)
		}
		if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
			return "", fmt.Errorf("%s %s failed: %w (%s)", p.tool, subcommand, err, stderr)
		}
		return "", fmt.Errorf("%s %s failed: %w", p.tool, subcommand, err)
	}

	key := strings.TrimSpace(res.Stdout)
	if _, err := ParseKey(key); err != nil {
		return "", fmt.Errorf("%s %s returned unusable output: %w", p.tool, subcommand, err)
	}
	return key, nil
}
