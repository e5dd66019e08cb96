package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var (
	applyInterface string
	applyConfigDir string
	applyReport    string
)

var applyCmd = &cobra.Command{
	Use:   "apply <client>",
	Short: "Load an existing client config into the interface again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{
			Interface: applyInterface,
			ConfigDir: applyConfigDir,
		})
		if err != nil {
			return err
		}
		_, err = cli.ReapplyClient(cmd.Context(), sc, args[0], applyReport)
		return err
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyInterface, "interface", "", "WireGuard interface to update (default: WG_INTERFACE)")
	applyCmd.Flags().StringVar(&applyConfigDir, "config-dir", "", "Directory for client configs (default: WG_CONFIG_DIR)")
	applyCmd.Flags().StringVar(&applyReport, "report", "text", "Result format: text or yaml")

	rootCmd.AddCommand(applyCmd)
}
