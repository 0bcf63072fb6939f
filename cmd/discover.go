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

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Fetch new bills from the GPO bulk-data listings",
	Long: `Discover walks the configured bulk-data index pages, downloads each
bill status document, and records the bills matching the configured
keywords. Bills already recorded are skipped, so the command is safe to
rerun as often as the listings update.

Examples:
  # One discovery pass with the default config
  ./cyberlawbot discover`,
	Run: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) {
	cfg, logger, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	log.Println("Connecting to database...")
	db, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	client := service.NewGPOClient(cfg.Discovery.Timeout.Std())
	filter := service.NewKeywordFilter(cfg.Keywords)
	ingester := service.NewIngester(client, service.NewParser(), filter, store.NewBillStore(db), logger)

	stats, err := ingester.Ingest(ctx, cfg.Discovery.ResolveIndexURLs())
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Discovery cancelled")
			ingester.LogSummary(stats)
			os.Exit(1)
		}
		log.Fatalf("Discovery failed: %v", err)
	}
	ingester.LogSummary(stats)

	// Snapshot pipeline metrics after every pass
	metricsService := service.NewMetricsService(db)
	metrics, err := metricsService.CalculateAndStore(ctx)
	if err != nil {
		log.Printf("Warning: Failed to calculate metrics: %v", err)
	} else {
		log.Println("")
		log.Println("=== Pipeline Metrics ===")
		log.Printf("Recorded bills:     %d", metrics.TotalBills)
		log.Printf("Posted:             %d", metrics.PostedBills)
		log.Printf("Awaiting short URL: %d", metrics.AwaitingShorten)
		log.Printf("Awaiting publish:   %d", metrics.AwaitingPublish)
		if metrics.BusiestType != "" {
			log.Printf("Busiest bill type:  %s (%d bills)", metrics.BusiestType, metrics.BusiestTypeBills)
		}
		if metrics.OldestUnposted != "" {
			log.Printf("Oldest unposted:    %s (introduced %s)",
				metrics.OldestUnposted, metrics.OldestIntroduced.Format("2006-01-02"))
		}
	}

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
