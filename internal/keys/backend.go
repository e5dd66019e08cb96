package keys

import (
	"fmt"
	"time"

	"github.com/zoro11031/wg-provision/internal/system"
)

// Key backend names accepted by NewProvider.
const (
	BackendTool   = "tool"
	BackendNative = "native"
)

// NewProvider returns the Provider for backend. The tool backend shells out
// to tool; the native backend needs no external binary.
func NewProvider(backend string, runner system.CommandRunner, tool string, timeout time.Duration) (Provider, error) {
	switch backend {
	case "", BackendTool:
		return NewToolProvider(runner, tool, timeout), nil
	case BackendNative:
		return NewNativeProvider(), nil
	default:
		return nil, fmt.Errorf("unknown key backend %q (want %s or %s)", backend, BackendTool, BackendNative)
	}
}
