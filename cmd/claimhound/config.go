package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/claimhound/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Claim Hound configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := cfg.MaskedYAML()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		source := cfgFile
		if source == "" {
			source = config.DefaultConfigPath() + " (if present)"
		}
		fmt.Fprintf(out, "# config file: %s\n", source)
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, "# Configuration hierarchy (highest to lowest priority):")
		fmt.Fprintln(out, "#   1. CLI flags")
		fmt.Fprintf(out, "#   2. Environment variables (%s_*, GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, DATABASE_URL)\n", config.EnvPrefix)
		fmt.Fprintln(out, "#   3. Config file")
		fmt.Fprintln(out, "#   4. Defaults")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	// The file is written from the defaults; nothing needs loading.
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if path == "" {
			return fmt.Errorf("cannot determine home directory; pass --config")
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
