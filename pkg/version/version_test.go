package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "wg-provision version ") {
		t.Errorf("Info() = %q", info)
	}
	if !strings.Contains(info, Short()) {
		t.Errorf("Info() should contain the short version %q", Short())
	}
}
