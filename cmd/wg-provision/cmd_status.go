package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show settings and provisioned clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{})
		if err != nil {
			return err
		}
		return cli.ShowStatus(sc)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
