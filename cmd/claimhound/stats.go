package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/claimhound/internal/analytics"
	"github.com/jonathan/claimhound/internal/claims"
	"github.com/jonathan/claimhound/internal/observability"
	"github.com/jonathan/claimhound/internal/schemas"
)

var (
	statsFilter   analytics.Filter
	statsValidate bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print review statistics for the claims JSON file",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringP("in", "i", "", "claims JSON file (default claims_file)")
	f.StringVar(&statsFilter.Category, "category", "", "only count claims of this class")
	f.StringVar(&statsFilter.Location, "location", "", "only count claims with this location (\"unknown\" for none)")
	f.StringVar(&statsFilter.Author, "author", "", "only count claims from this author")
	f.BoolVar(&statsValidate, "validate", false, "validate the file against the claims schema first")
	bindConfigFlag(f, "in", "claims_file")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsValidate {
		if err := schemas.ValidateClaimsFile(cfg.ClaimsFile); err != nil {
			return err
		}
	}

	all, err := claims.LoadClaimsJSON(cfg.ClaimsFile)
	if err != nil {
		return fmt.Errorf("failed to load claims: %w", err)
	}
	selected := analytics.Apply(all, statsFilter)
	logger.Debug("claims loaded", "path", cfg.ClaimsFile, "claims", len(all), "selected", len(selected))

	observability.NewPrinter(cmd.OutOrStdout()).PrintStats(selected)
	return nil
}
