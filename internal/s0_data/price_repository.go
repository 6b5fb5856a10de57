package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
)

// PriceRepository implements contracts.PriceProvider over data.price_history
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetBars retrieves bars for a ticker within [from, to], oldest first
func (r *PriceRepository) GetBars(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error) {
	query := `
		SELECT ticker, trade_date, open_price, close_price, volume
		FROM data.price_history
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []contracts.PriceBar
	for rows.Next() {
		var b contracts.PriceBar
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveBars upserts bars in a single batch
func (r *PriceRepository) SaveBars(ctx context.Context, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.price_history (ticker, trade_date, open_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(query, b.Ticker, b.Date, b.Open, b.Close, b.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save bars: %w", err)
		}
	}
	return nil
}
