package cli

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/zoro11031/wg-provision/internal/apply"
	"github.com/zoro11031/wg-provision/internal/keys"
	"github.com/zoro11031/wg-provision/internal/system"
)

// RunDoctor checks that provisioning can succeed on this host and returns
// an error naming the number of problems found. Missing optional tools are
// reported as warnings only.
func RunDoctor(ctx context.Context, sc *SetupContext) error {
	d := &doctor{sc: sc}

	sc.UI.Header("wg-provision diagnostics")

	d.checkSettings()
	d.checkKeyBackend()
	d.checkApplyBackend(ctx)
	d.checkConfigDir()
	d.checkEndpoint(ctx)
	d.checkOptionalTools()

	sc.UI.Print("")
	sc.UI.Separator()
	if d.problems > 0 {
		return fmt.Errorf("doctor found %d problem(s)", d.problems)
	}
	sc.UI.Success("No problems found")
	return nil
}

type doctor struct {
	sc       *SetupContext
	problems int
}

func (d *doctor) fail(format string, args ...interface{}) {
	d.problems++
	d.sc.UI.Errorf(format, args...)
}

func (d *doctor) checkSettings() {
	sc := d.sc
	sc.UI.Step("Settings")

	exists, err := sc.FileSystem.FileExists(sc.Config.FilePath())
	switch {
	case err != nil:
		d.fail("Cannot read settings file: %v", err)
	case exists:
		sc.UI.Successf("Settings file: %s", sc.Config.FilePath())
	default:
		sc.UI.Infof("No settings file at %s, using defaults", sc.Config.FilePath())
	}

	s := sc.Settings
	sc.UI.Field("Tool", s.Tool)
	sc.UI.Field("Interface", s.Interface)
	sc.UI.Field("Config directory", s.ConfigDir)
	sc.UI.Field("Key backend", s.KeyBackend)
	sc.UI.Field("Apply backend", s.ApplyBackend)
	sc.UI.Field("Command timeout", s.CommandTimeout.String())
}

func (d *doctor) checkKeyBackend() {
	sc := d.sc
	sc.UI.Step("Key generation")

	if sc.Settings.KeyBackend == keys.BackendNative {
		sc.UI.Success("Native key backend, no external tool needed")
		return
	}
	if system.CommandExists(sc.Settings.Tool) {
		sc.UI.Successf("%s is available", sc.Settings.Tool)
		return
	}
	d.fail("%s not found; install wireguard-tools or set WG_KEY_BACKEND=native", sc.Settings.Tool)
}

func (d *doctor) checkApplyBackend(ctx context.Context) {
	sc := d.sc
	s := sc.Settings
	sc.UI.Step("Interface")

	switch s.ApplyBackend {
	case apply.BackendNone:
		sc.UI.Info("Apply backend is none, configs are only written")
	case apply.BackendNetlink:
		exists, err := sc.Network.InterfaceExists(s.Interface)
		if err != nil {
			d.fail("Cannot inspect interface %s: %v", s.Interface, err)
			return
		}
		if !exists {
			d.fail("Interface %s does not exist", s.Interface)
			return
		}
		sc.UI.Successf("Interface %s exists", s.Interface)
		if addrs, err := sc.Network.InterfaceAddresses(s.Interface); err == nil && len(addrs) > 0 {
			sc.UI.Field("Addresses", strings.Join(addrs, ", "))
		}
	default:
		if !system.CommandExists(s.Tool) {
			d.fail("%s not found, cannot apply configs", s.Tool)
			return
		}
		tctx, cancel := context.WithTimeout(ctx, s.CommandTimeout)
		defer cancel()
		out, err := apply.ShowInterface(tctx, sc.Runner, s.Tool, s.Interface)
		if err != nil {
			d.fail("Interface %s is not usable: %v", s.Interface, err)
			return
		}
		sc.UI.Successf("Interface %s is up", s.Interface)
		peers := strings.Count(out, "peer:")
		sc.UI.Field("Peers", fmt.Sprintf("%d", peers))
	}
}

func (d *doctor) checkConfigDir() {
	sc := d.sc
	dir := sc.Provisioner.Store().Dir()
	sc.UI.Step("Config directory")

	exists, err := sc.FileSystem.DirectoryExists(dir)
	if err != nil {
		d.fail("Cannot inspect %s: %v", dir, err)
		return
	}
	if !exists {
		d.fail("%s does not exist; run 'wg-provision init'", dir)
		return
	}
	sc.UI.Successf("%s exists", dir)

	if perms, err := sc.FileSystem.GetPermissions(dir); err == nil && perms&0077 != 0 {
		sc.UI.Warningf("%s is accessible by other users (%v); private keys are stored here", dir, perms)
	}

	clients, err := sc.Provisioner.Store().List()
	if err != nil {
		d.fail("Cannot list clients: %v", err)
		return
	}
	sc.UI.Field("Clients", fmt.Sprintf("%d", len(clients)))
}

func (d *doctor) checkEndpoint(ctx context.Context) {
	sc := d.sc
	endpoint := sc.Settings.Policy.Endpoint
	if endpoint == "" {
		return
	}
	sc.UI.Step("Endpoint")

	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		d.fail("Invalid endpoint %s: %v", endpoint, err)
		return
	}
	tctx, cancel := context.WithTimeout(ctx, sc.Settings.CommandTimeout)
	defer cancel()
	addrs, err := sc.Network.ResolveHost(tctx, host)
	if err != nil {
		d.fail("Endpoint host does not resolve: %v", err)
		return
	}
	sc.UI.Successf("%s resolves to %s", host, strings.Join(addrs, ", "))
}

func (d *doctor) checkOptionalTools() {
	sc := d.sc
	sc.UI.Step("Optional tools")

	if system.CommandExists("qrencode") {
		sc.UI.Success("qrencode is available (show --qr)")
	} else {
		sc.UI.Warning("qrencode not found; 'show --qr' will not work")
	}
}
