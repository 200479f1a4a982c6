package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/claimhound/internal/extraction"
	"github.com/jonathan/claimhound/internal/llm"
	"github.com/jonathan/claimhound/internal/server"
	"github.com/jonathan/claimhound/internal/server/ratelimit"
)

var (
	serveNoWatch     bool
	serveNoRateLimit bool
	serveWhitelist   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Start an HTTP server over the claims JSON file: filtered claims, statistics,
the daily timeline and the highlight view. The file is cached and reloaded when
it changes on disk or on POST /reload.

POST /runs is available when the LLM provider has an API key, and the /runs
history endpoints when a database URL is configured.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("listen", "", "address to listen on (default listen)")
	f.String("posts", "", "posts JSON file used by POST /runs (default posts_file)")
	f.String("claims", "", "claims JSON file to serve (default claims_file)")
	f.String("db-url", "", "PostgreSQL URL for run history (default database_url)")
	f.BoolVar(&serveNoWatch, "no-watch", false, "do not reload the claims file when it changes")
	f.BoolVar(&serveNoRateLimit, "no-rate-limit", false, "disable per-client rate limiting")
	f.StringVar(&serveWhitelist, "rate-limit-whitelist", "", "comma-separated client IPs exempt from rate limiting")
	bindConfigFlag(f, "listen", "listen")
	bindConfigFlag(f, "posts", "posts_file")
	bindConfigFlag(f, "claims", "claims_file")
	bindConfigFlag(f, "db-url", "database_url")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{Logger: logger}
	model := ""
	if client := openLLMClient(ctx); client != nil {
		defer func() { _ = client.Close() }()
		extractor := extraction.NewLLMExtractor(client, extraction.WithTimeout(cfg.Timeout), extraction.WithLogger(logger))
		deps.Extractor = extractor
		model = extractor.Model()
	}
	// A nil *db.DB must not be stored in the interface.
	if database := openDatabase(ctx); database != nil {
		defer database.Close()
		deps.Runs = database
	}

	srv := server.New(serverConfig(model), deps)
	return srv.Run(ctx)
}

// serverConfig maps the configuration onto the server's.
func serverConfig(model string) server.Config {
	limits := ratelimit.DefaultConfig()
	limits.Enabled = !serveNoRateLimit
	limits.Whitelist = ratelimit.ParseIPList(serveWhitelist)

	return server.Config{
		Listen:     cfg.Listen,
		PostsFile:  cfg.PostsFile,
		ClaimsFile: cfg.ClaimsFile,
		Provider:   cfg.Provider,
		CacheTTL:   server.DefaultCacheTTL,
		RunOptions: runOptions(cfg, model),
		RateLimit:  limits,
		Watch:      !serveNoWatch,
	}
}

// openLLMClient returns nil when extraction cannot be offered.
func openLLMClient(ctx context.Context) llm.Client {
	if err := cfg.RequireAPIKey(); err != nil {
		logger.Warn("POST /runs disabled", "error", err)
		return nil
	}
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.ResolveAPIKey())
	if err != nil {
		logger.Warn("POST /runs disabled", "error", err)
		return nil
	}
	return client
}
