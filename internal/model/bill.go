package model

import (
	"database/sql"
	"time"
)

// BillRecord represents a tracked bill as stored in the bills table.
//
// The natural key is (Type, Number); ID is the surrogate key assigned by the
// store on insert and never changes afterward. ShortURL stays NULL until the
// bill's congress.gov URL has been shortened, and Posted stays false until the
// bill has been published to the status feed. Both transitions happen at most
// once in a record's life.
type BillRecord struct {
	ID         int64
	Type       string
	Number     int
	Sponsor    string
	Title      string
	FullURL    string
	ShortURL   sql.NullString
	Introduced time.Time
	Updated    sql.NullTime
	Posted     bool
}

// Shortened reports whether the record already carries a short URL.
func (b *BillRecord) Shortened() bool {
	return b.ShortURL.Valid && b.ShortURL.String != ""
}

// BillCandidate is a parsed bill before it has been accepted into the store.
//
// It carries the persisted BillRecord fields plus the summary and legislative
// subjects, which are consumed only by the relevance filter and never stored.
type BillCandidate struct {
	Type       string
	Number     int
	Sponsor    string
	Title      string
	FullURL    string
	Introduced time.Time
	Updated    sql.NullTime

	Summary  string
	Subjects []string
}

// Record converts the candidate into a fresh BillRecord: no short URL yet,
// not posted, no surrogate ID.
func (c *BillCandidate) Record() *BillRecord {
	return &BillRecord{
		Type:       c.Type,
		Number:     c.Number,
		Sponsor:    c.Sponsor,
		Title:      c.Title,
		FullURL:    c.FullURL,
		Introduced: c.Introduced,
		Updated:    c.Updated,
	}
}
