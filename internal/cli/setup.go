// Package cli is the layer between the cobra commands and the provisioning
// packages: it loads settings, wires the components and implements each
// command's behavior so it can be tested without a terminal.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/zoro11031/wg-provision/internal/apply"
	"github.com/zoro11031/wg-provision/internal/common"
	"github.com/zoro11031/wg-provision/internal/config"
	"github.com/zoro11031/wg-provision/internal/keys"
	"github.com/zoro11031/wg-provision/internal/params"
	"github.com/zoro11031/wg-provision/internal/provision"
	"github.com/zoro11031/wg-provision/internal/store"
	"github.com/zoro11031/wg-provision/internal/system"
	"github.com/zoro11031/wg-provision/internal/ui"
	"golang.org/x/term"
)

// Options are the global and per-command flags that affect wiring.
// Empty fields keep the configured value.
type Options struct {
	ConfigPath     string
	NonInteractive bool
	Interface      string
	ConfigDir      string
	Endpoint       string
	NoApply        bool
}

// SetupContext holds all dependencies needed by the commands.
type SetupContext struct {
	Config      *config.Config
	Settings    config.Settings
	UI          *ui.UI
	Runner      system.CommandRunner
	FileSystem  *system.FileSystem
	Network     *system.Network
	Provisioner *provision.Provisioner
	// Out receives machine-readable output (reports, listings, documents).
	Out io.Writer
}

// NewSetupContext loads the config file and wires the real implementations.
func NewSetupContext(opts Options) (*SetupContext, error) {
	cfg := config.New(opts.ConfigPath)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	u := ui.New()
	// Prompts cannot work without a terminal on stdin.
	u.SetNonInteractive(opts.NonInteractive || !term.IsTerminal(int(os.Stdin.Fd())))

	return NewSetupContextWith(cfg, u, system.NewCommandRunner(), os.Stdout, opts)
}

// NewSetupContextWith wires a context from explicit dependencies.
func NewSetupContextWith(cfg *config.Config, u *ui.UI, runner system.CommandRunner, out io.Writer, opts Options) (*SetupContext, error) {
	settings, err := config.LoadSettings(cfg)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(&settings, opts); err != nil {
		return nil, err
	}

	p, err := buildProvisioner(settings, runner, u)
	if err != nil {
		return nil, err
	}

	return &SetupContext{
		Config:      cfg,
		Settings:    settings,
		UI:          u,
		Runner:      runner,
		FileSystem:  system.NewFileSystem(),
		Network:     system.NewNetwork(),
		Provisioner: p,
		Out:         out,
	}, nil
}

// WithEndpoint returns a copy of sc whose provisioner uses endpoint. An empty
// endpoint selects a random one. sc itself is left unchanged.
func (sc *SetupContext) WithEndpoint(endpoint string) (*SetupContext, error) {
	if endpoint == sc.Settings.Policy.Endpoint {
		return sc, nil
	}
	if endpoint != "" {
		if err := common.ValidateEndpoint(endpoint); err != nil {
			return nil, err
		}
	}

	settings := sc.Settings
	settings.Policy.Endpoint = endpoint
	p, err := buildProvisioner(settings, sc.Runner, sc.UI)
	if err != nil {
		return nil, err
	}

	next := *sc
	next.Settings = settings
	next.Provisioner = p
	return &next, nil
}

func applyOverrides(s *config.Settings, opts Options) error {
	if opts.Interface != "" {
		if err := common.ValidateInterfaceName(opts.Interface); err != nil {
			return fmt.Errorf("--interface: %w", err)
		}
		s.Interface = opts.Interface
	}
	if opts.ConfigDir != "" {
		s.ConfigDir = opts.ConfigDir
	}
	if opts.Endpoint != "" {
		if err := common.ValidateEndpoint(opts.Endpoint); err != nil {
			return fmt.Errorf("--endpoint: %w", err)
		}
		s.Policy.Endpoint = opts.Endpoint
	}
	if opts.NoApply {
		s.ApplyBackend = apply.BackendNone
	}
	return nil
}

func buildProvisioner(s config.Settings, runner system.CommandRunner, u *ui.UI) (*provision.Provisioner, error) {
	kp, err := keys.NewProvider(s.KeyBackend, runner, s.Tool, s.CommandTimeout)
	if err != nil {
		return nil, err
	}

	applier, err := apply.New(s.ApplyBackend, apply.Options{
		Tool:      s.Tool,
		Interface: s.Interface,
		Timeout:   s.CommandTimeout,
		Runner:    runner,
	})
	if err != nil {
		return nil, err
	}

	return provision.New(provision.Options{
		Keys:    kp,
		Params:  params.NewGenerator(),
		Policy:  s.Policy,
		Store:   store.New(s.ConfigDir, nil),
		Applier: applier,
		UI:      u,
	})
}
