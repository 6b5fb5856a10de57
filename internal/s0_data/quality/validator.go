package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Gate measures how much input data exists for a scoring date
type Gate struct {
	db     *pgxpool.Pool
	config Config
}

// Config holds coverage thresholds (0.0 ~ 1.0)
type Config struct {
	MinPriceCoverage     float64 `yaml:"min_price_coverage"`
	MinVolumeCoverage    float64 `yaml:"min_volume_coverage"`
	MinSentimentCoverage float64 `yaml:"min_sentiment_coverage"`
}

// DefaultConfig returns the thresholds used by the daily job
func DefaultConfig() Config {
	return Config{
		MinPriceCoverage:     0.95,
		MinVolumeCoverage:    0.90,
		MinSentimentCoverage: 0.0, // sentiment은 없으면 0.0으로 대체
	}
}

// Snapshot is the coverage of one date
type Snapshot struct {
	Date         time.Time          `json:"date"`
	TotalTickers int                `json:"total_tickers"`
	Coverage     map[string]float64 `json:"coverage"`
	Failures     []string           `json:"failures,omitempty"`
	Passed       bool               `json:"passed"`
}

// NewGate creates a new coverage gate
func NewGate(db *pgxpool.Pool, config Config) *Gate {
	return &Gate{
		db:     db,
		config: config,
	}
}

// Check measures coverage for date. A failed gate is reported, not returned as an error.
// ⭐ SSOT: 점수 산출 전 데이터 커버리지 검증
func (g *Gate) Check(ctx context.Context, date time.Time) (*Snapshot, error) {
	total, err := g.countTickers(ctx)
	if err != nil {
		return nil, err
	}

	coverage := make(map[string]float64, 3)
	for name, query := range coverageQueries {
		var cov float64
		if err := g.db.QueryRow(ctx, query, date).Scan(&cov); err != nil {
			return nil, fmt.Errorf("query %s coverage: %w", name, err)
		}
		coverage[name] = cov
	}

	return Evaluate(date, total, coverage, g.config), nil
}

// Evaluate compares coverage against thresholds
func Evaluate(date time.Time, total int, coverage map[string]float64, cfg Config) *Snapshot {
	snap := &Snapshot{
		Date:         date,
		TotalTickers: total,
		Coverage:     coverage,
	}

	checks := []struct {
		name string
		min  float64
	}{
		{"price", cfg.MinPriceCoverage},
		{"volume", cfg.MinVolumeCoverage},
		{"sentiment", cfg.MinSentimentCoverage},
	}
	for _, c := range checks {
		if coverage[c.name] < c.min {
			snap.Failures = append(snap.Failures,
				fmt.Sprintf("%s coverage %.2f < %.2f", c.name, coverage[c.name], c.min))
		}
	}

	snap.Passed = total > 0 && len(snap.Failures) == 0
	return snap
}

func (g *Gate) countTickers(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM data.companies WHERE is_active = TRUE`

	if err := g.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("query total tickers: %w", err)
	}
	return count, nil
}

var coverageQueries = map[string]string{
	"price": `
		SELECT COALESCE(COUNT(DISTINCT p.ticker)::FLOAT / NULLIF(COUNT(DISTINCT c.ticker), 0), 0)
		FROM data.companies c
		LEFT JOIN data.price_history p ON c.ticker = p.ticker AND p.trade_date = $1
		WHERE c.is_active = TRUE
	`,
	"volume": `
		SELECT COALESCE(COUNT(DISTINCT p.ticker)::FLOAT / NULLIF(COUNT(DISTINCT c.ticker), 0), 0)
		FROM data.companies c
		LEFT JOIN data.price_history p ON c.ticker = p.ticker
			AND p.trade_date = $1
			AND p.volume > 0
		WHERE c.is_active = TRUE
	`,
	"sentiment": `
		SELECT COALESCE(COUNT(DISTINCT s.ticker)::FLOAT / NULLIF(COUNT(DISTINCT c.ticker), 0), 0)
		FROM data.companies c
		LEFT JOIN data.news_sentiment s ON c.ticker = s.ticker AND s.published_date = $1
		WHERE c.is_active = TRUE
	`,
}
