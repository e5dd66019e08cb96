package apply

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoro11031/wg-provision/internal/system"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type fakeRunner struct {
	result system.CommandResult
	err    error
	block  bool
	calls  [][]string
}

func (f *fakeRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (system.CommandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.block {
		<-ctx.Done()
		return system.CommandResult{}, ctx.Err()
	}
	return f.result, f.err
}

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"", "*apply.ToolApplier", false},
		{BackendTool, "*apply.ToolApplier", false},
		{BackendNetlink, "*apply.NetlinkApplier", false},
		{BackendNone, "apply.NoopApplier", false},
		{"ssh", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			a, err := New(tt.backend, Options{Runner: &fakeRunner{}})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := typeName(a); got != tt.want {
				t.Errorf("New(%q) = %s, want %s", tt.backend, got, tt.want)
			}
		})
	}
}

func typeName(a Applier) string {
	switch a.(type) {
	case *ToolApplier:
		return "*apply.ToolApplier"
	case *NetlinkApplier:
		return "*apply.NetlinkApplier"
	case NoopApplier:
		return "apply.NoopApplier"
	}
	return "unknown"
}

func TestToolApplierRunsSetconf(t *testing.T) {
	runner := &fakeRunner{}
	a := NewToolApplier(runner, "/usr/bin/wg", "wg1", time.Second)

	if err := a.Apply(context.Background(), "/etc/wg/alice.conf"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.calls))
	}
	want := "/usr/bin/wg setconf wg1 /etc/wg/alice.conf"
	if got := strings.Join(runner.calls[0], " "); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestToolApplierDefaults(t *testing.T) {
	runner := &fakeRunner{}
	a := NewToolApplier(runner, "", "", 0)
	if err := a.Apply(context.Background(), "x.conf"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := strings.Join(runner.calls[0], " "); got != "wg setconf wg0 x.conf" {
		t.Errorf("command = %q", got)
	}
}

func TestToolApplierFailures(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		contains string
		sentinel error
	}{
		{
			name:     "non-zero exit with stderr",
			runner:   &fakeRunner{err: errors.New("exit status 1"), result: system.CommandResult{Stderr: "Unable to modify interface: No such device\n"}},
			contains: "No such device",
		},
		{
			name:     "non-zero exit without stderr",
			runner:   &fakeRunner{err: errors.New("exit status 1")},
			contains: "exit status 1",
		},
		{
			name:     "zero exit with diagnostics",
			runner:   &fakeRunner{result: system.CommandResult{Stderr: "Warning: AllowedIP has nonzero host part"}},
			contains: "nonzero host part",
			sentinel: ErrApplyDiagnostics,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewToolApplier(tt.runner, "wg", "wg0", time.Second)
			err := a.Apply(context.Background(), "alice.conf")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err, tt.contains)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestToolApplierTimeout(t *testing.T) {
	a := NewToolApplier(&fakeRunner{block: true}, "wg", "wg0", 20*time.Millisecond)

	err := a.Apply(context.Background(), "alice.conf")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestNoopApplier(t *testing.T) {
	a, err := New(BackendNone, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !Skipped(a) {
		t.Error("Skipped should be true for the none backend")
	}
	if Skipped(NewToolApplier(&fakeRunner{}, "", "", 0)) {
		t.Error("Skipped should be false for the tool backend")
	}
	if err := a.Apply(context.Background(), "anything"); err != nil {
		t.Errorf("noop Apply returned %v", err)
	}
}

func TestShowInterface(t *testing.T) {
	runner := &fakeRunner{result: system.CommandResult{Stdout: "interface: wg0\n"}}
	out, err := ShowInterface(context.Background(), runner, "wg", "wg0")
	if err != nil {
		t.Fatalf("ShowInterface failed: %v", err)
	}
	if out != "interface: wg0\n" {
		t.Errorf("output = %q", out)
	}

	runner = &fakeRunner{err: errors.New("exit status 1"), result: system.CommandResult{Stderr: "Unable to access interface"}}
	if _, err := ShowInterface(context.Background(), runner, "wg", "wg9"); err == nil || !strings.Contains(err.Error(), "Unable to access") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func testConfig(t *testing.T) (string, wgtypes.Key, wgtypes.Key, wgtypes.Key) {
	t.Helper()
	priv, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	peer, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	psk, err := wgtypes.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	content := "# VPN CONFIG\n" +
		"[Interface]\n" +
		"Address = 10.0.0.5/24\n" +
		"DNS = 1.1.1.1, 1.0.0.1\n" +
		"PrivateKey = " + priv.String() + "\n" +
		"MTU = 1280\n" +
		"\n" +
		"[Peer]\n" +
		"PublicKey = " + peer.PublicKey().String() + "\n" +
		"PresharedKey = " + psk.String() + "\n" +
		"AllowedIPs = 0.0.0.0/0, ::/0\n" +
		"Endpoint = 203.0.113.7:51820\n" +
		"PersistentKeepalive = 25"
	return content, priv, peer.PublicKey(), psk
}

func TestDeviceConfig(t *testing.T) {
	content, priv, peerPub, psk := testConfig(t)

	cfg, err := DeviceConfig(content)
	if err != nil {
		t.Fatalf("DeviceConfig failed: %v", err)
	}
	if cfg.ReplacePeers {
		t.Error("existing peers must not be replaced")
	}
	if cfg.PrivateKey == nil || *cfg.PrivateKey != priv {
		t.Error("private key not carried over")
	}
	if len(cfg.Peers) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(cfg.Peers))
	}

	peer := cfg.Peers[0]
	if peer.PublicKey != peerPub {
		t.Error("peer public key mismatch")
	}
	if peer.PresharedKey == nil || *peer.PresharedKey != psk {
		t.Error("preshared key mismatch")
	}
	if peer.Endpoint == nil || peer.Endpoint.String() != "203.0.113.7:51820" {
		t.Errorf("endpoint = %v", peer.Endpoint)
	}
	if len(peer.AllowedIPs) != 2 || peer.AllowedIPs[0].String() != "0.0.0.0/0" || peer.AllowedIPs[1].String() != "::/0" {
		t.Errorf("allowed IPs = %v", peer.AllowedIPs)
	}
	if peer.PersistentKeepaliveInterval == nil || *peer.PersistentKeepaliveInterval != 25*time.Second {
		t.Errorf("keepalive = %v", peer.PersistentKeepaliveInterval)
	}
}

func TestDeviceConfigRejectsBadValues(t *testing.T) {
	content, _, _, _ := testConfig(t)

	tests := []struct {
		name    string
		replace [2]string
	}{
		{"bad keepalive", [2]string{"PersistentKeepalive = 25", "PersistentKeepalive = soon"}},
		{"bad allowed ips", [2]string{"AllowedIPs = 0.0.0.0/0, ::/0", "AllowedIPs = everything"}},
		{"bad endpoint", [2]string{"Endpoint = 203.0.113.7:51820", "Endpoint = 203.0.113.7"}},
		{"bad private key", [2]string{"MTU = 1280", "MTU = 1280\nPrivateKey = nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := strings.Replace(content, tt.replace[0], tt.replace[1], 1)
			if _, err := DeviceConfig(broken); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

type fakeDevice struct {
	name string
	cfg  wgtypes.Config
	err  error
}

func (f *fakeDevice) ConfigureDevice(name string, cfg wgtypes.Config) error {
	f.name = name
	f.cfg = cfg
	return f.err
}

func (f *fakeDevice) Close() error { return nil }

func netlinkWithFake(content string, dev *fakeDevice, timeout time.Duration) *NetlinkApplier {
	a := NewNetlinkApplier("wg0", timeout)
	a.readFile = func(string) ([]byte, error) { return []byte(content), nil }
	a.newClient = func() (deviceConfigurer, error) { return dev, nil }
	return a
}

func TestNetlinkApplierConfiguresDevice(t *testing.T) {
	content, _, peerPub, _ := testConfig(t)
	dev := &fakeDevice{}

	if err := netlinkWithFake(content, dev, time.Second).Apply(context.Background(), "alice.conf"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if dev.name != "wg0" {
		t.Errorf("configured %q, want wg0", dev.name)
	}
	if len(dev.cfg.Peers) != 1 || dev.cfg.Peers[0].PublicKey != peerPub {
		t.Error("peer was not passed to ConfigureDevice")
	}
}

func TestNetlinkApplierErrors(t *testing.T) {
	content, _, _, _ := testConfig(t)

	dev := &fakeDevice{err: errors.New("operation not permitted")}
	err := netlinkWithFake(content, dev, time.Second).Apply(context.Background(), "alice.conf")
	if err == nil || !strings.Contains(err.Error(), "operation not permitted") {
		t.Errorf("expected configure error, got %v", err)
	}

	a := NewNetlinkApplier("wg0", time.Second)
	a.readFile = func(string) ([]byte, error) { return nil, errors.New("no such file") }
	if err := a.Apply(context.Background(), "missing.conf"); err == nil {
		t.Error("expected read error")
	}

}

// slowDevice blocks in ConfigureDevice until released and records whether
// Close was called while a configure call was still in flight.
type slowDevice struct {
	release chan struct{}
	closed  chan struct{}

	mu                 sync.Mutex
	configuring        bool
	closedDuringConfig bool
}

func (d *slowDevice) ConfigureDevice(string, wgtypes.Config) error {
	d.mu.Lock()
	d.configuring = true
	d.mu.Unlock()

	<-d.release

	d.mu.Lock()
	d.configuring = false
	d.mu.Unlock()
	return nil
}

func (d *slowDevice) Close() error {
	d.mu.Lock()
	if d.configuring {
		d.closedDuringConfig = true
	}
	d.mu.Unlock()
	close(d.closed)
	return nil
}

func TestNetlinkApplierTimeoutDoesNotCloseInFlightClient(t *testing.T) {
	content, _, _, _ := testConfig(t)
	dev := &slowDevice{release: make(chan struct{}), closed: make(chan struct{})}

	a := NewNetlinkApplier("wg0", 10*time.Millisecond)
	a.readFile = func(string) ([]byte, error) { return []byte(content), nil }
	a.newClient = func() (deviceConfigurer, error) { return dev, nil }

	err := a.Apply(context.Background(), "alice.conf")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	select {
	case <-dev.closed:
		t.Fatal("client closed while ConfigureDevice was still running")
	default:
	}

	close(dev.release)
	select {
	case <-dev.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("client was never closed after ConfigureDevice returned")
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.closedDuringConfig {
		t.Error("Close ran during ConfigureDevice")
	}
}
