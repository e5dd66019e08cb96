// Package apply pushes a written client config into a live WireGuard
// interface.
package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zoro11031/wg-provision/internal/system"
)

// Backend names accepted by New.
const (
	BackendTool    = "tool"
	BackendNetlink = "netlink"
	BackendNone    = "none"
)

// ErrApplyDiagnostics is returned when the control tool printed diagnostics,
// even if it exited zero.
var ErrApplyDiagnostics = errors.New("wg reported diagnostics")

// Applier loads the config at path into the live interface.
type Applier interface {
	Apply(ctx context.Context, path string) error
}

// Options configure the appliers built by New.
type Options struct {
	Tool      string
	Interface string
	Timeout   time.Duration
	Runner    system.CommandRunner
}

// New returns the applier for backend.
func New(backend string, opts Options) (Applier, error) {
	switch backend {
	case "", BackendTool:
		return NewToolApplier(opts.Runner, opts.Tool, opts.Interface, opts.Timeout), nil
	case BackendNetlink:
		return NewNetlinkApplier(opts.Interface, opts.Timeout), nil
	case BackendNone:
		return NoopApplier{}, nil
	default:
		return nil, fmt.Errorf("unknown apply backend %q (want %s, %s or %s)", backend, BackendTool, BackendNetlink, BackendNone)
	}
}

// ToolApplier runs `<tool> setconf <interface> <path>`.
type ToolApplier struct {
	runner  system.CommandRunner
	tool    string
	iface   string
	timeout time.Duration
}

// NewToolApplier creates a ToolApplier.
func NewToolApplier(runner system.CommandRunner, tool, iface string, timeout time.Duration) *ToolApplier {
	if runner == nil {
		runner = system.NewCommandRunner()
	}
	if tool == "" {
		tool = "wg"
	}
	if iface == "" {
		iface = "wg0"
	}
	return &ToolApplier{runner: runner, tool: tool, iface: iface, timeout: timeout}
}

// Apply runs the tool. Any stderr output counts as failure.
func (a *ToolApplier) Apply(ctx context.Context, path string) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	res, err := a.runner.Run(ctx, nil, a.tool, "setconf", a.iface, path)
	stderr := strings.TrimSpace(res.Stderr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s setconf %s: %w", a.tool, a.iface, ctxErr)
		}
		if stderr != "" {
			return fmt.Errorf("%s setconf %s failed: %w (%s)", a.tool, a.iface, err, stderr)
		}
		return fmt.Errorf("%s setconf %s failed: %w", a.tool, a.iface, err)
	}
	if stderr != "" {
		return fmt.Errorf("%w: %s", ErrApplyDiagnostics, stderr)
	}
	return nil
}

// NoopApplier skips the apply phase.
type NoopApplier struct{}

// Apply does nothing.
func (NoopApplier) Apply(ctx context.Context, path string) error {
	return nil
}

// Skipped reports whether a is the no-op applier.
func Skipped(a Applier) bool {
	_, ok := a.(NoopApplier)
	return ok
}

// ShowInterface runs `<tool> show <interface>` and returns its output.
// It is used by the doctor command to check the interface is up.
func ShowInterface(ctx context.Context, runner system.CommandRunner, tool, iface string) (string, error) {
	res, err := runner.Run(ctx, nil, tool, "show", iface)
	if err != nil {
		if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
			return "", fmt.Errorf("%s show %s failed: %w (%s)", tool, iface, err, stderr)
		}
		return "", fmt.Errorf("%s show %s failed: %w", tool, iface, err)
	}
	return res.Stdout, nil
}
