package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbeaver502/CyberLawBot/internal/store"
)

// IngestStats tracks discovery statistics
type IngestStats struct {
	Indexes    int
	Documents  int
	Relevant   int
	Inserted   int
	Duplicates int
	Irrelevant int
	Failed     int
}

// Ingester walks the bulk-data indexes, parses each bill status document,
// and records the relevant bills that are not already stored. A single bad
// document never stops the walk.
type Ingester struct {
	client *GPOClient
	parser *Parser
	filter *KeywordFilter
	bills  *store.BillStore
	logger *slog.Logger
	delay  time.Duration
}

// NewIngester creates a new Ingester
func NewIngester(client *GPOClient, parser *Parser, filter *KeywordFilter, bills *store.BillStore, logger *slog.Logger) *Ingester {
	return &Ingester{
		client: client,
		parser: parser,
		filter: filter,
		bills:  bills,
		logger: logger,
		delay:  client.Delay(),
	}
}

// Ingest fetches and records bills from the given bulk-data indexes.
func (i *Ingester) Ingest(ctx context.Context, indexURLs []string) (*IngestStats, error) {
	stats := &IngestStats{}
	start := time.Now()

	for _, indexURL := range indexURLs {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		i.logger.Info("connecting", "index", indexURL)

		links, err := i.client.FetchBillLinks(ctx, indexURL)
		if err != nil {
			i.logger.Warn("failed to fetch index", "index", indexURL, "error", err)
			continue
		}

		stats.Indexes++
		i.logger.Info("found bill documents", "index", indexURL, "count", len(links))

		for idx, link := range links {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			default:
			}

			stats.Documents++
			progress := fmt.Sprintf("[%d/%d]", idx+1, len(links))

			if err := i.ingestDocument(ctx, link, progress, stats); err != nil {
				i.logger.Warn("failed to ingest document", "progress", progress, "url", link, "error", err)
				stats.Failed++
			}

			if idx < len(links)-1 {
				time.Sleep(i.delay)
			}
		}
	}

	i.logger.Info("discovery finished",
		"elapsed", time.Since(start).Round(time.Second).String(),
		"relevant", stats.Relevant)

	return stats, nil
}

// ingestDocument fetches, parses, filters, and stores one bill document.
func (i *Ingester) ingestDocument(ctx context.Context, link, progress string, stats *IngestStats) error {
	content, err := i.client.FetchDocument(ctx, link)
	if err != nil {
		return err
	}

	candidate, err := i.parser.Parse(content)
	if err != nil {
		return err
	}

	if !i.filter.Match(candidate) {
		stats.Irrelevant++
		return nil
	}
	stats.Relevant++

	exists, err := i.bills.Exists(ctx, candidate.Type, candidate.Number)
	if err != nil {
		return err
	}
	if exists {
		stats.Duplicates++
		return nil
	}

	rec := candidate.Record()
	if err := i.bills.Insert(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			stats.Duplicates++
			return nil
		}
		return err
	}

	stats.Inserted++
	i.logger.Info("recorded bill", "progress", progress,
		"bill", fmt.Sprintf("%s %d", rec.Type, rec.Number), "title", rec.Title)

	return nil
}

// LogSummary reports the discovery statistics.
func (i *Ingester) LogSummary(stats *IngestStats) {
	i.logger.Info("discovery summary",
		"indexes", stats.Indexes,
		"documents", stats.Documents,
		"relevant", stats.Relevant,
		"inserted", stats.Inserted,
		"duplicates", stats.Duplicates,
		"irrelevant", stats.Irrelevant,
		"failed", stats.Failed)
}
