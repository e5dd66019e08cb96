package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that provisioning can work on this host",
	Long: `Run diagnostic checks: settings, the wg tool, the live interface, the
client config directory and optional tools. Exits non-zero when a problem is
found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{})
		if err != nil {
			return err
		}
		return cli.RunDoctor(cmd.Context(), sc)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
