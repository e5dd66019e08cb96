package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var (
	deleteForce     bool
	deleteStrict    bool
	deleteConfigDir string
)

var deleteCmd = &cobra.Command{
	Use:   "delete <client>",
	Short: "Delete a client config file",
	Long: `Remove <config-dir>/<client>.conf. The live interface is not touched.
A missing file is reported as a warning unless --strict is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{ConfigDir: deleteConfigDir})
		if err != nil {
			return err
		}
		return cli.DeleteClient(cmd.Context(), sc, args[0], deleteForce, deleteStrict)
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Do not ask for confirmation")
	deleteCmd.Flags().BoolVar(&deleteStrict, "strict", false, "Fail when the client does not exist")
	deleteCmd.Flags().StringVar(&deleteConfigDir, "config-dir", "", "Directory for client configs (default: WG_CONFIG_DIR)")

	rootCmd.AddCommand(deleteCmd)
}
