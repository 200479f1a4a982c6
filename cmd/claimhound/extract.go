package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/claimhound/internal/config"
	"github.com/jonathan/claimhound/internal/db"
	"github.com/jonathan/claimhound/internal/extraction"
	"github.com/jonathan/claimhound/internal/llm"
	"github.com/jonathan/claimhound/internal/observability"
	"github.com/jonathan/claimhound/internal/pipeline"
	"github.com/jonathan/claimhound/internal/prompts"
)

var (
	extractInstruction string
	extractShowClaims  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract claims from the posts JSON file",
	Long: `Extract sends every post to the configured LLM backend, aligns the returned
spans with the post text and writes the claims JSON file. The written file is
validated against the claims schema.

A post that fails extraction is counted and logged; the run continues.
Interrupting the run (Ctrl-C) stops before the next post and leaves the
claims file untouched.

When a database URL is configured the run and its claims are also recorded
in PostgreSQL.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringP("in", "i", "", "posts JSON file (default posts_file)")
	f.StringP("out", "o", "", "claims JSON file to write (default claims_file)")
	f.IntP("concurrency", "c", 0, "posts extracted in parallel (default concurrency)")
	f.Float64("rate-limit", 0, "maximum backend calls per second, 0 for unlimited (default rate_limit)")
	f.String("provider", "", "LLM provider: gemini, openai, anthropic or ollama (default provider)")
	f.String("model", "", "model name overriding the provider default")
	f.String("db-url", "", "PostgreSQL URL for recording the run (default database_url)")
	f.StringVar(&extractInstruction, "instruction", "claim-instruction", "extraction instruction prompt: claim-instruction or claim-instruction-strict")
	f.BoolVar(&extractShowClaims, "show", false, "print the first extracted claims")
	bindConfigFlag(f, "in", "posts_file")
	bindConfigFlag(f, "out", "claims_file")
	bindConfigFlag(f, "concurrency", "concurrency")
	bindConfigFlag(f, "rate-limit", "rate_limit")
	bindConfigFlag(f, "provider", "provider")
	bindConfigFlag(f, "model", "model")
	bindConfigFlag(f, "db-url", "database_url")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.ResolveAPIKey())
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	extractor := extraction.NewLLMExtractor(client, extraction.WithTimeout(cfg.Timeout), extraction.WithLogger(logger))
	return runExtraction(ctx, cmd.OutOrStdout(), extractor, extractor.Model())
}

// runExtraction runs a file-to-file job with extractor and prints the summary.
func runExtraction(ctx context.Context, out io.Writer, extractor extraction.Extractor, model string) error {
	instruction, err := prompts.Get(prompts.ExtractionFile, extractInstruction)
	if err != nil {
		return fmt.Errorf("unknown --instruction %q: %w", extractInstruction, err)
	}

	printer := observability.NewPrinter(out)
	opts := runOptions(cfg, model)
	opts.Instruction = instruction
	if cfg.Verbose {
		opts.OnProgress = printer.PrintProgress
	}

	job := pipeline.Job{
		PostsFile:  cfg.PostsFile,
		ClaimsFile: cfg.ClaimsFile,
		Provider:   cfg.Provider,
	}
	if database := openDatabase(ctx); database != nil {
		defer database.Close()
		job.Store = database
	}

	logger.Info("starting extraction", "posts", cfg.PostsFile, "provider", cfg.Provider, "model", model,
		"concurrency", opts.Concurrency)

	result, err := pipeline.NewRunner(extractor, opts).RunJob(ctx, job)
	if result == nil {
		return err
	}

	summary := observability.RunSummary{Total: result.Total}
	if result.Result != nil {
		summary.Processed = result.ProcessedCount
		summary.Errors = result.ErrorCount
		summary.Duration = result.Duration
		summary.Claims = result.Claims
	}
	if err == nil {
		summary.Output = cfg.ClaimsFile
	}
	if result.RunID != uuid.Nil {
		summary.RunID = result.RunID.String()
	}
	printer.PrintRunSummary(summary)
	if extractShowClaims && err == nil {
		printer.PrintClaims(summary.Claims)
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("extraction interrupted after %d of %d posts; %s was not written",
			summary.Processed, summary.Total, cfg.ClaimsFile)
	}
	return err
}

// runOptions maps the configuration onto pipeline options.
func runOptions(c *config.Config, model string) pipeline.Options {
	return pipeline.Options{
		Concurrency: c.Concurrency,
		RateLimit:   c.RateLimit,
		Burst:       c.RateBurst,
		Model:       model,
		Fields:      c.Fields,
		Logger:      logger,
	}
}

// openDatabase connects to the configured database and applies migrations.
// It returns nil when no database is configured or it is unreachable.
func openDatabase(ctx context.Context) *db.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("continuing without database persistence", "error", err)
		return nil
	}
	if err := database.Migrate(ctx); err != nil {
		logger.Warn("continuing without database persistence", "error", err)
		database.Close()
		return nil
	}
	return database
}
