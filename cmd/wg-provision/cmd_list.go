package main

import (
	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/cli"
)

var (
	listConfigDir string
	showQR        bool
	showReveal    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{ConfigDir: listConfigDir})
		if err != nil {
			return err
		}
		_, err = cli.ListClients(sc)
		return err
	},
}

var showCmd = &cobra.Command{
	Use:   "show <client>",
	Short: "Show a client config",
	Long: `Print a summary and the config document of a client. Private and
preshared keys are masked unless --reveal is given; --qr prints the full
document as a QR code for mobile clients (requires qrencode).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := setupContext(cli.Options{ConfigDir: listConfigDir})
		if err != nil {
			return err
		}
		return cli.ShowClient(cmd.Context(), sc, args[0], showReveal, showQR)
	},
}

func init() {
	listCmd.Flags().StringVar(&listConfigDir, "config-dir", "", "Directory for client configs (default: WG_CONFIG_DIR)")
	showCmd.Flags().StringVar(&listConfigDir, "config-dir", "", "Directory for client configs (default: WG_CONFIG_DIR)")
	showCmd.Flags().BoolVar(&showQR, "qr", false, "Render the config as a terminal QR code")
	showCmd.Flags().BoolVar(&showReveal, "reveal", false, "Print private and preshared keys")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
