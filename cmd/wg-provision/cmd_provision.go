package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var (
	provisionInterface string
	provisionConfigDir string
	provisionEndpoint  string
	provisionNoApply   bool
	provisionReport    string
)

var provisionCmd = &cobra.Command{
	Use:   "provision [client]",
	Short: "Create a client config and apply it to the interface",
	Long: `Generate a keypair and preshared key for the client, write
<config-dir>/<client>.conf (replacing any existing file) and load it into the
WireGuard interface. A failed apply leaves the file in place; retry it with
'wg-provision apply <client>'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{
			Interface: provisionInterface,
			ConfigDir: provisionConfigDir,
			Endpoint:  provisionEndpoint,
			NoApply:   provisionNoApply,
		})
		if err != nil {
			return err
		}

		client := ""
		if len(args) == 1 {
			client = args[0]
		}
		_, err = cli.ProvisionClient(cmd.Context(), sc, client, provisionReport)
		return err
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionInterface, "interface", "", "WireGuard interface to update (default: WG_INTERFACE)")
	provisionCmd.Flags().StringVar(&provisionConfigDir, "config-dir", "", "Directory for client configs (default: WG_CONFIG_DIR)")
	provisionCmd.Flags().StringVar(&provisionEndpoint, "endpoint", "", "Fixed endpoint host:port instead of a random one")
	provisionCmd.Flags().BoolVar(&provisionNoApply, "no-apply", false, "Only write the config file")
	provisionCmd.Flags().StringVar(&provisionReport, "report", "text", "Result format: text or yaml")

	rootCmd.AddCommand(provisionCmd)
}
