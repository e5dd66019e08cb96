package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zoro11031/wg-provision/internal/keys"
	"github.com/zoro11031/wg-provision/internal/provision"
	"github.com/zoro11031/wg-provision/internal/store"
	"github.com/zoro11031/wg-provision/internal/system"
	"github.com/zoro11031/wg-provision/internal/ui"
	"github.com/zoro11031/wg-provision/internal/wgconfig"
)

const redacted = "(hidden, use --reveal)"

// Lines holding secrets in a rendered document.
var secretLine = regexp.MustCompile(`(?mi)^(\s*(?:PrivateKey|PresharedKey)\s*=\s*).*$`)

// ProvisionClient provisions client, prompting for the name when it is empty,
// and prints the result in the given report format. An apply failure is shown
// as a warning and in the report; it does not make the command fail.
func ProvisionClient(ctx context.Context, sc *SetupContext, client, report string) (*provision.Result, error) {
	if client == "" {
		name, err := sc.UI.PromptClientName("Client name")
		if err != nil {
			if errors.Is(err, ui.ErrNonInteractive) {
				return nil, fmt.Errorf("client name is required in non-interactive mode")
			}
			return nil, err
		}
		client = strings.TrimSpace(name)
	}

	res, err := sc.Provisioner.Provision(ctx, client)
	if err != nil {
		if errors.Is(err, store.ErrDirMissing) {
			sc.UI.Info("Create it with: wg-provision init")
		}
		return nil, err
	}

	if err := provision.WriteReport(sc.Out, res, report); err != nil {
		return res, err
	}
	return res, nil
}

// PromptEndpoint asks for the endpoint of the next client, offering the
// configured one as default, and returns a context using the answer.
// Non-interactive runs keep the configured endpoint.
func PromptEndpoint(sc *SetupContext) (*SetupContext, error) {
	answer, err := sc.UI.PromptInput("Endpoint host:port (empty for random)", sc.Settings.Policy.Endpoint)
	if err != nil {
		return nil, err
	}
	return sc.WithEndpoint(strings.TrimSpace(answer))
}

// ReapplyClient loads an existing config into the interface again.
func ReapplyClient(ctx context.Context, sc *SetupContext, client, report string) (*provision.Result, error) {
	res, err := sc.Provisioner.Reapply(ctx, client)
	if err != nil {
		return nil, err
	}
	if err := provision.WriteReport(sc.Out, res, report); err != nil {
		return res, err
	}
	return res, nil
}

// DeleteClient removes the config of client after confirmation. Deleting a
// client that does not exist is a warning, or an error when strict is set.
func DeleteClient(ctx context.Context, sc *SetupContext, client string, force, strict bool) error {
	if !force {
		confirm, err := sc.UI.PromptYesNo(fmt.Sprintf("Delete configuration for %s?", client), false)
		if err != nil {
			if errors.Is(err, ui.ErrNonInteractive) {
				return fmt.Errorf("refusing to delete %s without confirmation; pass --force", client)
			}
			return err
		}
		if !confirm {
			sc.UI.Info("Delete cancelled")
			return nil
		}
	}

	err := sc.Provisioner.Delete(ctx, client)
	if errors.Is(err, store.ErrNotFound) && !strict {
		sc.UI.Warningf("No configuration found for %s", client)
		return nil
	}
	return err
}

// ListClients prints the provisioned clients, one per line.
func ListClients(sc *SetupContext) ([]string, error) {
	clients, err := sc.Provisioner.Store().List()
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		sc.UI.Infof("No clients provisioned in %s", sc.Provisioner.Store().Dir())
		return clients, nil
	}
	for _, c := range clients {
		fmt.Fprintln(sc.Out, c)
	}
	return clients, nil
}

// ShowClient prints a summary of client's config followed by the document.
// Secrets are masked unless reveal is set; qr renders the full document as
// a terminal QR code instead.
func ShowClient(ctx context.Context, sc *SetupContext, client string, reveal, qr bool) error {
	doc, err := sc.Provisioner.Store().Read(client)
	if err != nil {
		return err
	}

	parsed := wgconfig.Parse(doc.String())
	sc.UI.Header(fmt.Sprintf("Client %s", client))
	if v, ok := parsed.Interface.Get("Address"); ok {
		sc.UI.Field("Address", v)
	}
	if v, ok := parsed.Interface.Get("DNS"); ok {
		sc.UI.Field("DNS", v)
	}
	for _, peer := range parsed.Peers {
		if v, ok := peer.Get("PublicKey"); ok {
			sc.UI.Field("Public key", keys.Truncate(v))
		}
		if v, ok := peer.Get("Endpoint"); ok {
			sc.UI.Field("Endpoint", v)
		}
		if v, ok := peer.Get("AllowedIPs"); ok {
			sc.UI.Field("Allowed IPs", v)
		}
	}
	sc.UI.Print("")

	if qr {
		code, err := RenderQRCode(ctx, sc.Runner, doc.String(), sc.Settings.CommandTimeout)
		if err != nil {
			return err
		}
		fmt.Fprint(sc.Out, code)
		return nil
	}

	content := doc.String()
	if !reveal {
		content = RedactSecrets(content)
	}
	fmt.Fprintln(sc.Out, content)
	return nil
}

// RedactSecrets masks private and preshared keys in a config document.
func RedactSecrets(content string) string {
	return secretLine.ReplaceAllString(content, "${1}"+redacted)
}

// InitConfigDir creates the client config directory (0700) and writes the
// settings file if it does not exist yet.
func InitConfigDir(sc *SetupContext) error {
	st := sc.Provisioner.Store()
	if err := st.EnsureDir(); err != nil {
		return err
	}
	sc.UI.Successf("Config directory ready: %s", st.Dir())

	exists, err := sc.FileSystem.FileExists(sc.Config.FilePath())
	if err != nil {
		return err
	}
	if !exists {
		if err := sc.Config.Save(); err != nil {
			return err
		}
		sc.UI.Successf("Created settings file: %s", sc.Config.FilePath())
	}
	return nil
}

// RenderQRCode pipes content through qrencode and returns the ASCII code.
func RenderQRCode(ctx context.Context, runner system.CommandRunner, content string, timeout time.Duration) (string, error) {
	if !system.CommandExists("qrencode") {
		return "", errors.New("qrencode binary not found; install qrencode to enable QR output")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := runner.Run(ctx, strings.NewReader(content), "qrencode", "-t", "ASCIIi", "-o", "-", "-m", "2")
	if err != nil {
		return "", fmt.Errorf("qrencode failed: %w (%s)", err, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
