package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TickerRepository implements contracts.TickerProvider over data.companies
// ⭐ SSOT: 추적 종목 목록은 여기서만
type TickerRepository struct {
	pool *pgxpool.Pool
}

// NewTickerRepository creates a new ticker repository
func NewTickerRepository(pool *pgxpool.Pool) *TickerRepository {
	return &TickerRepository{pool: pool}
}

// ListTickers returns every active ticker in alphabetical order
func (r *TickerRepository) ListTickers(ctx context.Context) ([]string, error) {
	query := `
		SELECT ticker
		FROM data.companies
		WHERE is_active = TRUE
		ORDER BY ticker ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	return tickers, rows.Err()
}

// Exists reports whether ticker is tracked
func (r *TickerRepository) Exists(ctx context.Context, ticker string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM data.companies WHERE ticker = $1 AND is_active = TRUE)`,
		ticker,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query ticker %s: %w", ticker, err)
	}
	return exists, nil
}

// Upsert registers a ticker as active (import command)
func (r *TickerRepository) Upsert(ctx context.Context, ticker, name, sector string) error {
	query := `
		INSERT INTO data.companies (ticker, name, sector, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			is_active = TRUE
	`

	_, err := r.pool.Exec(ctx, query, ticker, name, sector)
	return err
}
