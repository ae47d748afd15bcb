// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists commodities and price observations in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/price-engine/pkg/types"
)

const dbFile = "prices.db"

// Store manages the price database.
type Store struct {
	db *sql.DB
}

// Commodity is one persisted commodity identity. Identities are unique on
// (name, specification); many may refer to the same real-world good until
// the canonicalization stage collapses them.
type Commodity struct {
	ID            int64
	Name          string
	Category      *string
	Specification *string
	Unit          string
}

// Price is one persisted price observation, unique on
// (commodity_id, date, source_type).
type Price struct {
	ID          int64
	CommodityID int64
	Date        string
	Price       *float64
	SourceType  string
	SourceFile  string
}

// Open opens or creates the price database under cfg.DataDir. The
// connection uses WAL journaling with foreign keys on, and immediate
// transaction locking so a batch rewrite takes its write lock up front
// instead of failing mid-stage.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS commodities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT,
			specification TEXT,
			unit TEXT DEFAULT 'PHP/kg',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, specification)
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			commodity_id INTEGER NOT NULL REFERENCES commodities(id),
			date TEXT NOT NULL,
			price REAL,
			source_type TEXT DEFAULT 'daily',
			source_file TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(commodity_id, date, source_type)
		)`,
		`CREATE TABLE IF NOT EXISTS scrape_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			source_type TEXT DEFAULT 'daily',
			source_url TEXT,
			source_file TEXT,
			parse_method TEXT,
			commodity_count INTEGER DEFAULT 0,
			errors TEXT,
			scraped_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(date, source_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_commodity ON prices(commodity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date_type ON prices(date, source_type)`,
		`CREATE INDEX IF NOT EXISTS idx_commodities_category ON commodities(category)`,
		`CREATE INDEX IF NOT EXISTS idx_commodities_name ON commodities(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a SQLite uniqueness constraint
// failure. The merge engine branches on this to resolve collisions.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// Tx exposes the store operations inside a transaction.
type Tx struct {
	tx *sql.Tx
}

// ExclusiveTx runs fn inside a single write transaction. The immediate
// locking mode acquires the write lock at BEGIN, so a store concurrently
// held by another writer fails the stage up front rather than after a
// partial rewrite. The transaction commits only when fn returns nil.
func (s *Store) ExclusiveTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertCommodity returns the ID of the commodity with the given name and
// specification, inserting it when absent. An existing commodity's NULL
// category is backfilled from the argument; a set category is never
// overwritten.
func (t *Tx) UpsertCommodity(ctx context.Context, name string, category, specification *string, unit string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM commodities
		 WHERE name = ? AND (specification = ? OR (specification IS NULL AND ? IS NULL))`,
		name, specification, specification,
	).Scan(&id)

	switch {
	case err == nil:
		if category != nil {
			if _, err := t.tx.ExecContext(ctx,
				`UPDATE commodities SET category = ? WHERE id = ? AND category IS NULL`,
				category, id,
			); err != nil {
				return 0, fmt.Errorf("backfilling category: %w", err)
			}
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO commodities (name, category, specification, unit) VALUES (?, ?, ?, ?)`,
			name, category, specification, unit,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting commodity %q: %w", name, err)
		}
		return res.LastInsertId()
	default:
		return 0, fmt.Errorf("looking up commodity %q: %w", name, err)
	}
}

// UpsertPrice writes one price observation, overwriting the price and
// source file when the (commodity, date, source type) row already exists.
// Re-parsing a bulletin updates rows in place, never duplicates them.
func (t *Tx) UpsertPrice(ctx context.Context, commodityID int64, date string, price *float64, sourceType, sourceFile string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO prices (commodity_id, date, price, source_type, source_file)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(commodity_id, date, source_type)
		 DO UPDATE SET price = excluded.price, source_file = excluded.source_file`,
		commodityID, date, price, sourceType, sourceFile,
	)
	if err != nil {
		return fmt.Errorf("upserting price: %w", err)
	}
	return nil
}

// ListCommodities returns all commodity identities in insertion order.
func (t *Tx) ListCommodities(ctx context.Context) ([]Commodity, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, name, category, specification, unit FROM commodities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing commodities: %w", err)
	}
	defer rows.Close()

	var out []Commodity
	for rows.Next() {
		var c Commodity
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Specification, &c.Unit); err != nil {
			return nil, fmt.Errorf("scanning commodity: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPricesForCommodity returns the observations for one commodity in
// insertion order.
func (t *Tx) ListPricesForCommodity(ctx context.Context, commodityID int64) ([]Price, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, commodity_id, date, price, source_type, COALESCE(source_file, '')
		 FROM prices WHERE commodity_id = ? ORDER BY id`, commodityID)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()

	var out []Price
	for rows.Next() {
		var p Price
		if err := rows.Scan(&p.ID, &p.CommodityID, &p.Date, &p.Price, &p.SourceType, &p.SourceFile); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReassignPrice moves one observation to another commodity. A uniqueness
// violation on (commodity_id, date, source_type) is returned unwrapped so
// the caller can detect it with IsUniqueViolation.
func (t *Tx) ReassignPrice(ctx context.Context, priceID, newCommodityID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE prices SET commodity_id = ? WHERE id = ?`, newCommodityID, priceID)
	return err
}

// RenameCommodity sets a commodity's name.
func (t *Tx) RenameCommodity(ctx context.Context, id int64, name string) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE commodities SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("renaming commodity %d: %w", id, err)
	}
	return nil
}

// DeleteCommodity removes one commodity identity.
func (t *Tx) DeleteCommodity(ctx context.Context, id int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM commodities WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting commodity %d: %w", id, err)
	}
	return nil
}

// DeletePrice removes one price observation.
func (t *Tx) DeletePrice(ctx context.Context, id int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM prices WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting price %d: %w", id, err)
	}
	return nil
}

// ResultSummary holds counts from storing one ParseResult.
type ResultSummary struct {
	Commodities int
	Prices      int
}

// StoreResult persists one bulletin's ParseResult: commodity upserts,
// price rows for records with a price, and a scrape log entry. Results
// without a date are logged but store no rows, since observations key on
// the bulletin date.
func (s *Store) StoreResult(ctx context.Context, result types.ParseResult, sourceType string) (ResultSummary, error) {
	var summary ResultSummary

	err := s.ExclusiveTx(ctx, func(tx *Tx) error {
		if result.Date != "" {
			for _, rec := range result.Commodities {
				id, err := tx.UpsertCommodity(ctx, rec.Name, rec.Category, rec.Specification, rec.Unit)
				if err != nil {
					return err
				}
				summary.Commodities++

				if rec.Price == nil {
					continue
				}
				if err := tx.UpsertPrice(ctx, id, result.Date, rec.Price, sourceType, result.Source); err != nil {
					return err
				}
				summary.Prices++
			}
		}
		return tx.logScrape(ctx, result, sourceType)
	})
	if err != nil {
		summary = ResultSummary{}
	}
	return summary, err
}

// logScrape records the parse outcome for a (date, source type) pair,
// overwriting any earlier attempt for the same bulletin.
func (t *Tx) logScrape(ctx context.Context, result types.ParseResult, sourceType string) error {
	if result.Date == "" {
		// The log keys on (date, source_type); nothing to record without one.
		return nil
	}

	var errsJSON *string
	if len(result.Errors) > 0 {
		data, err := json.Marshal(result.Errors)
		if err != nil {
			return fmt.Errorf("encoding errors: %w", err)
		}
		s := string(data)
		errsJSON = &s
	}

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO scrape_log (date, source_type, source_file, parse_method, commodity_count, errors)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date, source_type) DO UPDATE SET
			source_file = excluded.source_file,
			parse_method = excluded.parse_method,
			commodity_count = excluded.commodity_count,
			errors = excluded.errors,
			scraped_at = CURRENT_TIMESTAMP`,
		result.Date, sourceType, result.Source, string(result.Method), len(result.Commodities), errsJSON,
	)
	if err != nil {
		return fmt.Errorf("logging scrape: %w", err)
	}
	return nil
}
