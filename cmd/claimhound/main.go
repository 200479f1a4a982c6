// Package main provides the claimhound command line: CSV conversion, claim
// extraction, review statistics, the highlight view and the dashboard API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jonathan/claimhound/internal/config"
)

// configKeyAnnotation marks a flag as an override of a config key.
const configKeyAnnotation = "claimhound_config_key"

var (
	cfgFile string
	verbose bool

	// Set by PersistentPreRunE for the executing command.
	cfg      *config.Config
	logger   *slog.Logger
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "claimhound",
	Short: "Extract predictions and claims from social media posts",
	Long: `Claim Hound converts exported posts to JSON, extracts predictions and claims
from each post with an LLM backend, and serves the results for review.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		err := closeLog()
		closeLog = func() error { return nil }
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.claimhound/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and progress output")
	bindConfigFlag(rootCmd.PersistentFlags(), "verbose", "verbose")
}

// bindConfigFlag makes flag override the config key when it is set.
func bindConfigFlag(fs *pflag.FlagSet, flag, key string) {
	if err := fs.SetAnnotation(flag, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// loadConfig layers flags, environment and config file over the defaults,
// validates the result and sets up logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	v := viper.New()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(keys[0], f)
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger, closeLog = config.SetupLogger(cfg.LogFile, config.LogLevel(cfg.Verbose))
	logger.Debug("configuration loaded", "command", cmd.Name(), "config_file", v.ConfigFileUsed())
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
