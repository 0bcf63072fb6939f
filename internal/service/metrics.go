package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MetricsService calculates pipeline metrics and keeps a history of them
type MetricsService struct {
	db *sql.DB
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(db *sql.DB) *MetricsService {
	return &MetricsService{db: db}
}

// PipelineMetrics represents calculated pipeline-wide metrics
type PipelineMetrics struct {
	TotalBills       int
	PostedBills      int
	ShortenedBills   int
	AwaitingShorten  int
	AwaitingPublish  int
	BusiestType      string
	BusiestTypeBills int
	OldestUnposted   string
	OldestIntroduced time.Time
}

// CalculateAndStore calculates pipeline metrics and appends them to the
// metrics history.
func (m *MetricsService) CalculateAndStore(ctx context.Context) (*PipelineMetrics, error) {
	metrics := &PipelineMetrics{}

	countQuery := `
		SELECT
			COUNT(*) as total_bills,
			COALESCE(SUM(CASE WHEN posted THEN 1 ELSE 0 END), 0) as posted_bills,
			COALESCE(SUM(CASE WHEN short_url IS NOT NULL AND short_url <> '' THEN 1 ELSE 0 END), 0) as shortened_bills
		FROM bills
	`
	err := m.db.QueryRowContext(ctx, countQuery).Scan(
		&metrics.TotalBills,
		&metrics.PostedBills,
		&metrics.ShortenedBills,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate bill metrics: %w", err)
	}

	// Posted bills always carry a short URL, so the publish backlog is the
	// shortened set minus the posted set.
	metrics.AwaitingShorten = metrics.TotalBills - metrics.ShortenedBills
	metrics.AwaitingPublish = metrics.ShortenedBills - metrics.PostedBills

	busiestQuery := `
		SELECT bill_type, COUNT(*) as bill_count
		FROM bills
		GROUP BY bill_type
		ORDER BY bill_count DESC, bill_type ASC
		LIMIT 1
	`
	err = m.db.QueryRowContext(ctx, busiestQuery).Scan(
		&metrics.BusiestType,
		&metrics.BusiestTypeBills,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find busiest bill type: %w", err)
	}

	oldestQuery := `
		SELECT bill_type, bill_number, introduced
		FROM bills
		WHERE NOT posted
		ORDER BY introduced ASC, id ASC
		LIMIT 1
	`
	var billType string
	var billNumber int
	err = m.db.QueryRowContext(ctx, oldestQuery).Scan(&billType, &billNumber, &metrics.OldestIntroduced)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find oldest unposted bill: %w", err)
	}
	if err == nil {
		metrics.OldestUnposted = fmt.Sprintf("%s %d", billType, billNumber)
	}

	if err := m.storeMetric(ctx, "total_bills", fmt.Sprintf("%d", metrics.TotalBills)); err != nil {
		return nil, err
	}
	if err := m.storeMetric(ctx, "posted_bills", fmt.Sprintf("%d", metrics.PostedBills)); err != nil {
		return nil, err
	}
	if err := m.storeMetric(ctx, "shortened_bills", fmt.Sprintf("%d", metrics.ShortenedBills)); err != nil {
		return nil, err
	}
	if err := m.storeMetric(ctx, "awaiting_shorten", fmt.Sprintf("%d", metrics.AwaitingShorten)); err != nil {
		return nil, err
	}
	if err := m.storeMetric(ctx, "awaiting_publish", fmt.Sprintf("%d", metrics.AwaitingPublish)); err != nil {
		return nil, err
	}
	if err := m.storeMetric(ctx, "busiest_type", metrics.BusiestType); err != nil {
		return nil, err
	}
	if err := m.storeMetric(ctx, "oldest_unposted", metrics.OldestUnposted); err != nil {
		return nil, err
	}

	return metrics, nil
}

// storeMetric stores a single metric value
func (m *MetricsService) storeMetric(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO metrics (metric_name, metric_value, calculated_at)
		VALUES ($1, $2, $3)
	`

	_, err := m.db.ExecContext(ctx, query, name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store metric %s: %w", name, err)
	}

	return nil
}

// GetLatestMetrics retrieves the most recent value of every metric.
func (m *MetricsService) GetLatestMetrics(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT m.metric_name, m.metric_value
		FROM metrics m
		JOIN (
			SELECT metric_name, MAX(calculated_at) as latest
			FROM metrics
			GROUP BY metric_name
		) l ON m.metric_name = l.metric_name AND m.calculated_at = l.latest
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics[name] = value
	}

	return metrics, rows.Err()
}
