package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
	"github.com/zoro11031/wg-provision/internal/ui"
	"github.com/zoro11031/wg-provision/pkg/version"
)

var (
	configPath     string
	nonInteractive bool
	noColor        bool
)

var rootCmd = &cobra.Command{
	Use:   "wg-provision",
	Short: "WireGuard client provisioning tool",
	Long: `Provision WireGuard clients: generate keys, pick network parameters,
write <config-dir>/<client>.conf and load it into a running interface.

Run without arguments to launch the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColor()
		}
	},
	RunE: runInteractiveMenu,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Launch interactive menu",
	RunE:  runInteractiveMenu,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default ~/.wg-provision.conf)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; fail when input is missing")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(menuCmd)
}

// setupContext builds the command context from the global flags plus opts.
func setupContext(opts cli.Options) (*cli.SetupContext, error) {
	opts.ConfigPath = configPath
	opts.NonInteractive = opts.NonInteractive || nonInteractive
	sc, err := cli.NewSetupContext(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return sc, nil
}

func runInteractiveMenu(cmd *cobra.Command, args []string) error {
	sc, err := setupContext(cli.Options{})
	if err != nil {
		return err
	}
	if sc.UI.IsNonInteractive() {
		return fmt.Errorf("the menu needs a terminal; use a subcommand with --non-interactive")
	}
	return cli.NewMenu(sc).Show(cmd.Context())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
