package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/mbeaver502/CyberLawBot/internal/service"
	"github.com/mbeaver502/CyberLawBot/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the bot has recorded and what it will post next",
	Long: `Status recalculates the pipeline metrics, prints them next to the
previous snapshot, and records the new snapshot in the metrics history.`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, _, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	metricsService := service.NewMetricsService(db)

	// Read the previous snapshot before this one replaces it.
	previous, err := metricsService.GetLatestMetrics(ctx)
	if err != nil {
		log.Fatalf("Failed to read metrics history: %v", err)
	}

	metrics, err := metricsService.CalculateAndStore(ctx)
	if err != nil {
		log.Fatalf("Failed to calculate metrics: %v", err)
	}

	log.Println("=== Bill Database ===")
	log.Printf("Recorded bills:     %d%s", metrics.TotalBills, was(previous, "total_bills"))
	log.Printf("Posted:             %d%s", metrics.PostedBills, was(previous, "posted_bills"))
	log.Printf("Awaiting short URL: %d%s", metrics.AwaitingShorten, was(previous, "awaiting_shorten"))
	log.Printf("Awaiting publish:   %d%s", metrics.AwaitingPublish, was(previous, "awaiting_publish"))
	if metrics.BusiestType != "" {
		log.Printf("Busiest bill type:  %s (%d bills)", metrics.BusiestType, metrics.BusiestTypeBills)
	}
	if metrics.OldestUnposted != "" {
		log.Printf("Next to publish:    %s (introduced %s)",
			metrics.OldestUnposted, metrics.OldestIntroduced.Format("2006-01-02"))
	} else {
		log.Println("Next to publish:    none ready")
	}
}

// was formats the previous snapshot's value for a metric, if one exists.
func was(previous map[string]string, name string) string {
	if v, ok := previous[name]; ok {
		return "  (was " + v + ")"
	}
	return ""
}
