// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PriceRow is one observation joined with its commodity, as served by the
// query API.
type PriceRow struct {
	Name          string   `json:"name"`
	Category      *string  `json:"category"`
	Specification *string  `json:"specification"`
	Unit          string   `json:"unit"`
	Price         *float64 `json:"price"`
	Date          string   `json:"date"`
}

// CommoditySummary is one commodity with its observation coverage.
type CommoditySummary struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Category      *string  `json:"category"`
	Specification *string  `json:"specification"`
	Unit          string   `json:"unit"`
	PriceCount    int      `json:"price_count"`
	FirstDate     *string  `json:"first_date"`
	LastDate      *string  `json:"last_date"`
}

// Stats summarizes the store contents.
type Stats struct {
	Commodities int     `json:"total_commodities"`
	Prices      int     `json:"total_prices"`
	Dates       int     `json:"total_dates"`
	Categories  int     `json:"total_categories"`
	FirstDate   *string `json:"first_date"`
	LastDate    *string `json:"last_date"`
}

// LatestDate returns the most recent observation date, or empty when the
// store holds no prices.
func (s *Store) LatestDate(ctx context.Context) (string, error) {
	var date *string
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM prices`).Scan(&date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("querying latest date: %w", err)
	}
	if date == nil {
		return "", nil
	}
	return *date, nil
}

// PricesByDate returns all observations for one date, ordered by category
// and name.
func (s *Store) PricesByDate(ctx context.Context, date string) ([]PriceRow, error) {
	return s.queryPriceRows(ctx,
		`SELECT c.name, c.category, c.specification, c.unit, p.price, p.date
		 FROM prices p JOIN commodities c ON p.commodity_id = c.id
		 WHERE p.date = ?
		 ORDER BY c.category, c.name`, date)
}

// History returns up to limit observations for commodities whose name
// contains the query, most recent first.
func (s *Store) History(ctx context.Context, name string, limit int) ([]PriceRow, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.queryPriceRows(ctx,
		`SELECT c.name, c.category, c.specification, c.unit, p.price, p.date
		 FROM prices p JOIN commodities c ON p.commodity_id = c.id
		 WHERE c.name LIKE ?
		 ORDER BY p.date DESC, c.name
		 LIMIT ?`, "%"+name+"%", limit)
}

// Search returns observations whose commodity name or category contains
// the query, on the given date or the latest date when none is given.
func (s *Store) Search(ctx context.Context, query, date string) ([]PriceRow, error) {
	like := "%" + query + "%"
	if date != "" {
		return s.queryPriceRows(ctx,
			`SELECT c.name, c.category, c.specification, c.unit, p.price, p.date
			 FROM prices p JOIN commodities c ON p.commodity_id = c.id
			 WHERE (c.name LIKE ? OR c.category LIKE ?) AND p.date = ?
			 ORDER BY c.category, c.name`, like, like, date)
	}
	return s.queryPriceRows(ctx,
		`SELECT c.name, c.category, c.specification, c.unit, p.price, p.date
		 FROM prices p JOIN commodities c ON p.commodity_id = c.id
		 WHERE (c.name LIKE ? OR c.category LIKE ?)
		   AND p.date = (SELECT MAX(date) FROM prices)
		 ORDER BY c.category, c.name`, like, like)
}

// Commodities returns every commodity with its observation coverage.
func (s *Store) Commodities(ctx context.Context) ([]CommoditySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.category, c.specification, c.unit,
		        COUNT(p.id), MIN(p.date), MAX(p.date)
		 FROM commodities c LEFT JOIN prices p ON c.id = p.commodity_id
		 GROUP BY c.id
		 ORDER BY c.category, c.name`)
	if err != nil {
		return nil, fmt.Errorf("listing commodity summaries: %w", err)
	}
	defer rows.Close()

	var out []CommoditySummary
	for rows.Next() {
		var c CommoditySummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Specification, &c.Unit,
			&c.PriceCount, &c.FirstDate, &c.LastDate); err != nil {
			return nil, fmt.Errorf("scanning commodity summary: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReadStats returns store totals.
func (s *Store) ReadStats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM commodities),
			(SELECT COUNT(*) FROM prices),
			(SELECT COUNT(DISTINCT date) FROM prices),
			(SELECT COUNT(DISTINCT category) FROM commodities WHERE category IS NOT NULL),
			(SELECT MIN(date) FROM prices),
			(SELECT MAX(date) FROM prices)`)
	if err := row.Scan(&st.Commodities, &st.Prices, &st.Dates, &st.Categories,
		&st.FirstDate, &st.LastDate); err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	return st, nil
}

func (s *Store) queryPriceRows(ctx context.Context, query string, args ...any) ([]PriceRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying prices: %w", err)
	}
	defer rows.Close()

	var out []PriceRow
	for rows.Next() {
		var r PriceRow
		if err := rows.Scan(&r.Name, &r.Category, &r.Specification, &r.Unit, &r.Price, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning price row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
