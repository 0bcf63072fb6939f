package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mbeaver502/CyberLawBot/internal/service"
	"github.com/mbeaver502/CyberLawBot/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bill tracking and publishing loop",
	Long: `Run starts the full pipeline: discover newly published bills from the
GPO bulk-data listings, shorten their congress.gov links, and post one
unpublished bill per cycle to the status feed.

The loop sleeps between cycles and exits on its own once the configured
cycle limit is reached, so a daily cron or systemd timer can relaunch it.

Examples:
  # Run with the default config file
  ./cyberlawbot run

  # Run with an alternate config
  ./cyberlawbot run --config /etc/cyberlawbot/config.yaml`,
	Run: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) {
	cfg, logger, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	// Connect to database
	log.Println("Connecting to database...")
	db, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bills := store.NewBillStore(db)

	var handles map[string]string
	if cfg.HandlesFile != "" {
		handles, err = service.LoadHandleTable(cfg.HandlesFile)
		if err != nil {
			log.Fatalf("Failed to load handle table: %v", err)
		}
	}

	// The discovery pass is best-effort: a bill missed today is picked up
	// by tomorrow's run.
	if cfg.Engine.DiscoverOnStart {
		client := service.NewGPOClient(cfg.Discovery.Timeout.Std())
		filter := service.NewKeywordFilter(cfg.Keywords)
		ingester := service.NewIngester(client, service.NewParser(), filter, bills, logger)

		stats, err := ingester.Ingest(ctx, cfg.Discovery.ResolveIndexURLs())
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Run cancelled")
				return
			}
			logger.Warn("discovery failed", "error", err)
		}
		ingester.LogSummary(stats)
	}

	shortener := service.NewShortener(cfg.Shortener.Endpoint, cfg.Shortener.QuotaCeiling, cfg.Shortener.Timeout.Std())
	publisher := service.NewPublisher(cfg.Publisher.BaseURL, cfg.Publisher.Token, cfg.Publisher.Timeout.Std())
	builder := service.NewStatusBuilder(cfg.Render.MaxLength, cfg.Render.Label, service.NewHandleResolver(handles))

	runner := service.NewRunner(bills, shortener, publisher, builder, service.ClockSleeper{}, logger, service.RunnerConfig{
		SleepInterval:          cfg.Engine.SleepInterval.Std(),
		MaxCycles:              cfg.Engine.MaxCycles,
		ContinueOnShortenError: cfg.Engine.ShortenContinueOnError,
	})

	if err := runner.Run(ctx); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}
