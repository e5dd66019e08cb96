package keys

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/zoro11031/wg-provision/internal/system"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type fakeCall struct {
	name  string
	args  []string
	stdin string
}

type fakeResponse struct {
	result system.CommandResult
	err    error
}

type fakeRunner struct {
	calls     []fakeCall
	responses map[string]fakeResponse
}

func (f *fakeRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (system.CommandResult, error) {
	call := fakeCall{name: name, args: args}
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		call.stdin = string(data)
	}
	f.calls = append(f.calls, call)
	resp := f.responses[strings.Join(args, " ")]
	return resp.result, resp.err
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (system.CommandResult, error) {
	<-ctx.Done()
	return system.CommandResult{}, errors.New("signal: killed")
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("no entropy")
}

func testKey(b byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{b}, 32))
}

func TestToolProviderGeneratesKeysViaStdin(t *testing.T) {
	priv := testKey(1)
	pub := testKey(2)
	runner := &fakeRunner{responses: map[string]fakeResponse{
		"genkey": {result: system.CommandResult{Stdout: priv + "\n"}},
		"pubkey": {result: system.CommandResult{Stdout: pub + "\n"}},
	}}
	p := NewToolProvider(runner, "/opt/wg/bin/wg", time.Second)

	km, err := Generate(context.Background(), p)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if km.PrivateKey != priv || km.PublicKey != pub {
		t.Fatalf("unexpected keys: %+v", km)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(runner.calls))
	}
	for _, call := range runner.calls {
		if call.name != "/opt/wg/bin/wg" {
			t.Errorf("tool path not honoured, got %s", call.name)
		}
		for _, arg := range call.args {
			if strings.Contains(arg, priv) {
				t.Errorf("private key leaked into argv: %v", call.args)
			}
		}
	}
	if strings.TrimSpace(runner.calls[1].stdin) != priv {
		t.Errorf("pubkey stdin = %q, want private key", runner.calls[1].stdin)
	}
}

func TestGenerateStopsWhenPrivateKeyFails(t *testing.T) {
	runner := &fakeRunner{responses: map[string]fakeResponse{
		"genkey": {result: system.CommandResult{Stderr: "wg: not permitted"}, err: errors.New("exit status 1")},
	}}
	p := NewToolProvider(runner, "", 0)

	km, err := Generate(context.Background(), p)
	if err == nil {
		t.Fatal("expected error when genkey fails")
	}
	if km != (KeyMaterial{}) {
		t.Errorf("expected empty key material, got %+v", km)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("pubkey must not run after genkey failure, got %d calls", len(runner.calls))
	}
	if !strings.Contains(err.Error(), "wg: not permitted") {
		t.Errorf("error should carry tool stderr, got %v", err)
	}
}

func TestToolProviderRejectsGarbageOutput(t *testing.T) {
	runner := &fakeRunner{responses: map[string]fakeResponse{
		"genkey": {result: system.CommandResult{Stdout: "null\n"}},
	}}
	p := NewToolProvider(runner, "wg", 0)

	_, err := p.GeneratePrivateKey(context.Background())
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestToolProviderRejectsEmptyPrivateKey(t *testing.T) {
	runner := &fakeRunner{}
	p := NewToolProvider(runner, "wg", 0)

	_, err := p.GeneratePublicKey(context.Background(), "  ")
	if !errors.Is(err, ErrEmptyPrivateKey) {
		t.Fatalf("expected ErrEmptyPrivateKey, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("tool should not be invoked for an empty key")
	}
}

func TestToolProviderTimesOut(t *testing.T) {
	p := NewToolProvider(blockingRunner{}, "wg", 20*time.Millisecond)

	_, err := p.GeneratePrivateKey(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGeneratePresharedKey(t *testing.T) {
	p := NewToolProvider(&fakeRunner{}, "wg", 0)

	first, err := p.GeneratePresharedKey()
	if err != nil {
		t.Fatalf("GeneratePresharedKey failed: %v", err)
	}
	second, err := p.GeneratePresharedKey()
	if err != nil {
		t.Fatalf("GeneratePresharedKey failed: %v", err)
	}

	for _, psk := range []string{first, second} {
		raw, err := base64.StdEncoding.DecodeString(psk)
		if err != nil {
			t.Fatalf("preshared key is not base64: %v", err)
		}
		if len(raw) != 32 {
			t.Fatalf("preshared key decodes to %d bytes, want 32", len(raw))
		}
	}
	if first == second {
		t.Error("two preshared keys should differ")
	}
}

func TestGeneratePresharedKeyEntropyFailure(t *testing.T) {
	p := NewToolProvider(&fakeRunner{}, "wg", 0)
	p.SetEntropySource(failingReader{})

	_, err := p.GeneratePresharedKey()
	if !errors.Is(err, ErrEntropy) {
		t.Fatalf("expected ErrEntropy, got %v", err)
	}
}

func TestNativeProviderMatchesWireGuardDerivation(t *testing.T) {
	p := NewNativeProvider()
	ctx := context.Background()

	priv, err := p.GeneratePrivateKey(ctx)
	if err != nil {
		t.Fatalf("GeneratePrivateKey failed: %v", err)
	}
	pub, err := p.GeneratePublicKey(ctx, priv)
	if err != nil {
		t.Fatalf("GeneratePublicKey failed: %v", err)
	}

	parsed, err := wgtypes.ParseKey(priv)
	if err != nil {
		t.Fatalf("private key does not parse: %v", err)
	}
	if want := parsed.PublicKey().String(); pub != want {
		t.Fatalf("public key = %s, want %s", pub, want)
	}
}

func TestNativeProviderEntropyFailure(t *testing.T) {
	p := NewNativeProvider()
	p.SetEntropySource(failingReader{})

	_, err := Generate(context.Background(), p)
	if !errors.Is(err, ErrEntropy) {
		t.Fatalf("expected ErrEntropy, got %v", err)
	}
}

func TestKeyMaterialValidate(t *testing.T) {
	tests := []struct {
		name    string
		km      KeyMaterial
		wantErr bool
	}{
		{"complete", KeyMaterial{"a", "b", "c"}, false},
		{"missing private", KeyMaterial{"", "b", "c"}, true},
		{"missing public", KeyMaterial{"a", "", "c"}, true},
		{"missing psk", KeyMaterial{"a", "b", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.km.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
