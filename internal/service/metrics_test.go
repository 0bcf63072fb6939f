package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeaver502/CyberLawBot/internal/store"
)

func openMetricsDB(t *testing.T) (*sql.DB, *store.BillStore) {
	t.Helper()

	db, err := store.Open("sqlite3", filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, store.NewBillStore(db)
}

func TestCalculateAndStore(t *testing.T) {
	db, bills := openMetricsDB(t)
	ctx := context.Background()

	posted := seedBill(t, bills, "S", 100, date(2017, time.March, 1), "https://is.gd/a")
	posted.Posted = true
	require.NoError(t, bills.Update(ctx, posted))

	seedBill(t, bills, "S", 101, date(2017, time.January, 3), "https://is.gd/b")
	seedBill(t, bills, "HR", 55, date(2017, time.February, 1), "")

	m := NewMetricsService(db)
	metrics, err := m.CalculateAndStore(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.TotalBills)
	assert.Equal(t, 1, metrics.PostedBills)
	assert.Equal(t, 2, metrics.ShortenedBills)
	assert.Equal(t, 1, metrics.AwaitingShorten)
	assert.Equal(t, 1, metrics.AwaitingPublish)
	assert.Equal(t, "S", metrics.BusiestType)
	assert.Equal(t, 2, metrics.BusiestTypeBills)
	assert.Equal(t, "S 101", metrics.OldestUnposted)
	assert.Equal(t, "2017-01-03", metrics.OldestIntroduced.Format("2006-01-02"))
}

func TestCalculateAndStoreEmptyDatabase(t *testing.T) {
	db, _ := openMetricsDB(t)

	m := NewMetricsService(db)
	metrics, err := m.CalculateAndStore(context.Background())
	require.NoError(t, err)

	assert.Zero(t, metrics.TotalBills)
	assert.Empty(t, metrics.BusiestType)
	assert.Empty(t, metrics.OldestUnposted)
}

func TestGetLatestMetrics(t *testing.T) {
	db, bills := openMetricsDB(t)
	ctx := context.Background()
	m := NewMetricsService(db)

	seedBill(t, bills, "S", 1, date(2017, time.January, 3), "")
	_, err := m.CalculateAndStore(ctx)
	require.NoError(t, err)

	// Snapshots order by timestamp; keep the second one measurably later.
	time.Sleep(10 * time.Millisecond)

	seedBill(t, bills, "S", 2, date(2017, time.January, 4), "")
	_, err = m.CalculateAndStore(ctx)
	require.NoError(t, err)

	latest, err := m.GetLatestMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2", latest["total_bills"])
	assert.Equal(t, "2", latest["awaiting_shorten"])
	assert.Equal(t, "S 1", latest["oldest_unposted"])
}

func TestGetLatestMetricsEmpty(t *testing.T) {
	db, _ := openMetricsDB(t)

	latest, err := NewMetricsService(db).GetLatestMetrics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}
