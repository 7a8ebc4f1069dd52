package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/soft-pages/pkg/config"
	"github.com/spf13/cobra"
)

var force bool

var initCmd = &cobra.Command{
	Use:                "init [PATH]",
	Short:              "Write a config file with the default settings",
	Args:               cobra.MaximumNArgs(1),
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(c *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if len(args) > 0 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file %s already exists", path)
		}

		cfg := config.DefaultConfig()
		if err := cfg.WriteConfig(path); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
		fmt.Fprintf(c.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
}
