package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/claimhound/internal/claims"
	"github.com/jonathan/claimhound/internal/rendering"
)

var (
	vizOutput   string
	vizTemplate string
	vizTitle    string
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Render an HTML page highlighting each claim in its post",
	Args:  cobra.NoArgs,
	RunE:  runVisualize,
}

func init() {
	f := visualizeCmd.Flags()
	f.StringP("in", "i", "", "claims JSON file (default claims_file)")
	f.StringVarP(&vizOutput, "out", "o", "predictions_viz.html", "HTML file to write")
	f.StringVar(&vizTemplate, "template", "", "HTML template overriding the built-in one")
	f.StringVar(&vizTitle, "title", "", "page title")
	bindConfigFlag(f, "in", "claims_file")
	rootCmd.AddCommand(visualizeCmd)
}

func runVisualize(cmd *cobra.Command, _ []string) error {
	loaded, err := claims.LoadClaimsJSON(cfg.ClaimsFile)
	if err != nil {
		return fmt.Errorf("failed to load claims: %w", err)
	}

	opts := rendering.Options{Title: vizTitle, TemplatePath: vizTemplate}
	if err := rendering.RenderFile(vizOutput, loaded, opts); err != nil {
		return err
	}

	logger.Info("visualization written", "path", vizOutput, "claims", len(loaded))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d claims to %s\n", len(loaded), vizOutput)
	return nil
}
