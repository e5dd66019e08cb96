package system

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

func TestCommandExists(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"sh exists", "sh", true},
		{"absolute path", "/bin/sh", true},
		{"nonexistent command", "this-command-does-not-exist-xyz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommandExists(tt.command)
			if got != tt.want {
				t.Errorf("CommandExists(%s) = %v, want %v", tt.command, got, tt.want)
			}
		})
	}
}

func TestExecCommandRunnerPipesStdin(t *testing.T) {
	r := NewCommandRunner()

	res, err := r.Run(context.Background(), strings.NewReader("secret-key\n"), "cat")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Stdout != "secret-key\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "secret-key\n")
	}
}

func TestExecCommandRunnerCapturesStderr(t *testing.T) {
	r := NewCommandRunner()

	res, err := r.Run(context.Background(), nil, "sh", "-c", "echo out; echo oops >&2; exit 3")
	if err == nil {
		t.Fatal("expected non-zero exit to be reported")
	}
	if res.Stdout != "out\n" || res.Stderr != "oops\n" {
		t.Errorf("streams = %q / %q", res.Stdout, res.Stderr)
	}
}

func TestExecCommandRunnerHonorsDeadline(t *testing.T) {
	r := NewCommandRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, nil, "sleep", "5")
	if err == nil {
		t.Fatal("expected error for killed command")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v", ctx.Err())
	}
	if time.Since(start) > 3*time.Second {
		t.Error("command was not killed at the deadline")
	}
}

func TestNetworkBasics(t *testing.T) {
	n := NewNetwork()

	ifaces, err := net.Interfaces()
	if err != nil || len(ifaces) == 0 {
		t.Skip("no network interfaces available")
	}
	name := ifaces[0].Name

	exists, err := n.InterfaceExists(name)
	if err != nil || !exists {
		t.Errorf("InterfaceExists(%s) = %v, %v; want true", name, exists, err)
	}
	if _, err := n.InterfaceAddresses(name); err != nil {
		t.Errorf("InterfaceAddresses(%s) error: %v", name, err)
	}

	exists, err = n.InterfaceExists("wgnotreal99")
	if err != nil || exists {
		t.Errorf("InterfaceExists(wgnotreal99) = %v, %v; want false", exists, err)
	}
}

func TestResolveHostLiteral(t *testing.T) {
	addrs, err := NewNetwork().ResolveHost(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("ResolveHost() error: %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "203.0.113.7" {
		t.Errorf("ResolveHost() = %v", addrs)
	}
}
