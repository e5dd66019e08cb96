package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var initConfigDir string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the client config directory",
	Long: `Create the client config directory with owner-only permissions (0700)
and an empty settings file if none exists. Provisioning refuses to create the
directory on its own.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{ConfigDir: initConfigDir})
		if err != nil {
			return err
		}
		return cli.InitConfigDir(sc)
	},
}

func init() {
	initCmd.Flags().StringVar(&initConfigDir, "config-dir", "", "Directory for client configs (default: WG_CONFIG_DIR)")
	rootCmd.AddCommand(initCmd)
}
