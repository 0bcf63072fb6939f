package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbeaver502/CyberLawBot/internal/model"
)

var (
	// ErrNotFound is returned when an update targets a row that does not exist.
	ErrNotFound = errors.New("bill not found")

	// ErrMissingFields is returned when a record lacks a required column.
	ErrMissingFields = errors.New("bill record missing required fields")

	// ErrDuplicate is returned when an insert collides with an existing
	// (bill_type, bill_number) pair.
	ErrDuplicate = errors.New("bill already recorded")
)

// BillStore handles database operations for bills
type BillStore struct {
	db *sql.DB
}

// NewBillStore creates a new BillStore
func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

// Exists reports whether a bill with the given type and number is recorded.
func (s *BillStore) Exists(ctx context.Context, billType string, number int) (bool, error) {
	query := `SELECT 1 FROM bills WHERE bill_type = $1 AND bill_number = $2`

	var one int
	err := s.db.QueryRowContext(ctx, query, billType, number).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check bill %s %d: %w", billType, number, err)
	}

	return true, nil
}

// Insert stores a new bill and sets its ID. Records missing a required field
// are rejected with ErrMissingFields before touching the database; an insert
// that collides with an already recorded bill returns ErrDuplicate.
func (s *BillStore) Insert(ctx context.Context, b *model.BillRecord) error {
	if b.Type == "" || b.Number < 1 || b.Sponsor == "" || b.Title == "" ||
		b.FullURL == "" || b.Introduced.IsZero() {
		return fmt.Errorf("insert bill %s %d: %w", b.Type, b.Number, ErrMissingFields)
	}

	query := `
		INSERT INTO bills (bill_type, bill_number, sponsor, title, full_url,
		                   short_url, introduced, updated, posted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (bill_type, bill_number) DO NOTHING
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		b.Type,
		b.Number,
		b.Sponsor,
		b.Title,
		b.FullURL,
		b.ShortURL,
		b.Introduced,
		b.Updated,
		b.Posted,
	).Scan(&b.ID)

	if err == sql.ErrNoRows {
		return fmt.Errorf("insert bill %s %d: %w", b.Type, b.Number, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert bill %s %d: %w", b.Type, b.Number, err)
	}

	return nil
}

// Update rewrites every mutable column of an existing bill by ID.
func (s *BillStore) Update(ctx context.Context, b *model.BillRecord) error {
	if b.ID < 1 {
		return fmt.Errorf("update bill: invalid id %d", b.ID)
	}

	query := `
		UPDATE bills
		SET bill_type = $1, bill_number = $2, sponsor = $3, title = $4,
		    full_url = $5, short_url = $6, introduced = $7, updated = $8,
		    posted = $9
		WHERE id = $10
	`

	res, err := s.db.ExecContext(ctx, query,
		b.Type,
		b.Number,
		b.Sponsor,
		b.Title,
		b.FullURL,
		b.ShortURL,
		b.Introduced,
		b.Updated,
		b.Posted,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill %d: %w", b.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bill %d: %w", b.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update bill %d: %w", b.ID, ErrNotFound)
	}

	return nil
}

// NeedingShortURL retrieves every bill without a short link, oldest first.
func (s *BillStore) NeedingShortURL(ctx context.Context) ([]model.BillRecord, error) {
	query := `
		SELECT id, bill_type, bill_number, sponsor, title, full_url,
		       short_url, introduced, updated, posted
		FROM bills
		WHERE short_url IS NULL OR short_url = ''
		ORDER BY introduced ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills needing short urls: %w", err)
	}
	defer rows.Close()

	var bills []model.BillRecord
	for rows.Next() {
		var b model.BillRecord
		err := rows.Scan(
			&b.ID,
			&b.Type,
			&b.Number,
			&b.Sponsor,
			&b.Title,
			&b.FullURL,
			&b.ShortURL,
			&b.Introduced,
			&b.Updated,
			&b.Posted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	return bills, rows.Err()
}

// NextUnpublished retrieves the oldest shortened bill that has not been
// published yet, or nil when every shortened bill is already out.
func (s *BillStore) NextUnpublished(ctx context.Context) (*model.BillRecord, error) {
	query := `
		SELECT id, bill_type, bill_number, sponsor, title, full_url,
		       short_url, introduced, updated, posted
		FROM bills
		WHERE short_url IS NOT NULL AND short_url <> '' AND NOT posted
		ORDER BY introduced ASC, id ASC
		LIMIT 1
	`

	var b model.BillRecord
	err := s.db.QueryRowContext(ctx, query).Scan(
		&b.ID,
		&b.Type,
		&b.Number,
		&b.Sponsor,
		&b.Title,
		&b.FullURL,
		&b.ShortURL,
		&b.Introduced,
		&b.Updated,
		&b.Posted,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next unpublished bill: %w", err)
	}

	return &b, nil
}

// IsPosted reports whether the given bill has already been published.
// Unknown bills report false.
func (s *BillStore) IsPosted(ctx context.Context, billType string, number int) (bool, error) {
	query := `SELECT posted FROM bills WHERE bill_type = $1 AND bill_number = $2`

	var posted bool
	err := s.db.QueryRowContext(ctx, query, billType, number).Scan(&posted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check posted state of bill %s %d: %w", billType, number, err)
	}

	return posted, nil
}

// CountBills returns the total number of recorded bills.
func (s *BillStore) CountBills(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}
	return count, nil
}
