package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zoro11031/wg-provision/internal/config"
	"github.com/zoro11031/wg-provision/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToUpper(args[0])
		if !config.IsKnownKey(key) {
			return fmt.Errorf("unknown configuration key: %s", key)
		}
		fmt.Println(config.New(configPath).GetOrDefault(key, ""))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Validate and store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToUpper(args[0])
		if err := config.ValidateValue(key, args[1]); err != nil {
			return err
		}
		cfg := config.New(configPath)
		if err := cfg.Set(key, args[1]); err != nil {
			return err
		}
		ui.New().Successf("%s saved to %s", key, cfg.FilePath())
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.New(configPath).Unset(strings.ToUpper(args[0]))
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings with their effective values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New(configPath)
		u := ui.NewWithWriter(os.Stdout)
		for _, key := range config.KnownKeys() {
			source := "default"
			if cfg.Exists(key) {
				source = "set"
			}
			u.Printf("%-22s %-28s (%s)", key, cfg.GetOrDefault(key, ""), source)
		}
		u.Print("")
		u.Infof("Settings file: %s", cfg.FilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
