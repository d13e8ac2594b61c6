// Package store persists the instrument master list.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zlin/chanscan/internal/market"
)

// Stock is one master-list row.
type Stock struct {
	Code      string
	Name      string
	UpdatedAt time.Time
}

// Repository handles master-list persistence.
// ⭐ SSOT: 股票主表的读写只在这里
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the master-list table if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS market_stocks (
			code       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create market_stocks: %w", err)
	}
	return nil
}

// UpsertQuotes refreshes the master list from a snapshot, batched.
func (r *Repository) UpsertQuotes(ctx context.Context, quotes []market.Quote) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO market_stocks (code, name, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(query, q.Code, q.Name)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range quotes {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("upsert stock: %w", err)
		}
	}
	return len(quotes), nil
}

// ListStocks returns the master list ordered by code.
func (r *Repository) ListStocks(ctx context.Context) ([]Stock, error) {
	query := `
		SELECT code, name, updated_at
		FROM market_stocks
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.Code, &s.Name, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// Count returns the master-list row count.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM market_stocks`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stocks: %w", err)
	}
	return n, nil
}
