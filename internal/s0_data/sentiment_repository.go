package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
)

// SentimentRepository implements contracts.SentimentProvider over data.news_sentiment
type SentimentRepository struct {
	pool *pgxpool.Pool
}

// NewSentimentRepository creates a new sentiment repository
func NewSentimentRepository(pool *pgxpool.Pool) *SentimentRepository {
	return &SentimentRepository{pool: pool}
}

// GetSentiment returns the sentiment published exactly on date; the latest fetch wins.
// No record returns (nil, nil).
func (r *SentimentRepository) GetSentiment(ctx context.Context, ticker string, date time.Time) (*float64, error) {
	query := `
		SELECT sentiment_score
		FROM data.news_sentiment
		WHERE ticker = $1 AND published_date = $2
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`

	var score float64
	err := r.pool.QueryRow(ctx, query, ticker, date).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sentiment for %s: %w", ticker, err)
	}
	return &score, nil
}

// Save appends a sentiment record (import command, external news pipeline)
func (r *SentimentRepository) Save(ctx context.Context, rec contracts.SentimentRecord, summary string) error {
	query := `
		INSERT INTO data.news_sentiment (ticker, published_date, sentiment_score, summary)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, rec.Ticker, rec.Date, rec.Score, summary)
	return err
}
