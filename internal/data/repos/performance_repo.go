package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/database"
)

// PerformanceRepository implements contracts.BucketStore over scoring.performance_analysis
type PerformanceRepository struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepository creates a new bucket summary repository
func NewPerformanceRepository(pool *pgxpool.Pool) *PerformanceRepository {
	return &PerformanceRepository{pool: pool}
}

// ReplaceBuckets deletes the run date's rows and inserts buckets in one transaction
func (r *PerformanceRepository) ReplaceBuckets(ctx context.Context, runDate time.Time, buckets []contracts.BucketSummary) error {
	day := contracts.NormalizeDate(runDate)

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM scoring.performance_analysis WHERE analysis_date = $1`, day); err != nil {
			return fmt.Errorf("failed to clear buckets: %w", err)
		}

		query := `
			INSERT INTO scoring.performance_analysis
				(analysis_date, score_bucket, avg_next_day_return, sample_count, window_days)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, b := range buckets {
			if _, err := tx.Exec(ctx, query, day, b.Label, b.MeanForwardReturn, b.Count, b.WindowDays); err != nil {
				return fmt.Errorf("failed to insert bucket %q: %w", b.Label, err)
			}
		}
		return nil
	})
}

// GetLatestBuckets returns the rows of the most recent analysis date, lowest band first
func (r *PerformanceRepository) GetLatestBuckets(ctx context.Context) ([]contracts.BucketSummary, error) {
	query := `
		SELECT analysis_date, score_bucket, avg_next_day_return, sample_count, window_days
		FROM scoring.performance_analysis
		WHERE analysis_date = (SELECT MAX(analysis_date) FROM scoring.performance_analysis)
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	byLabel := make(map[string]contracts.BucketSummary)
	for rows.Next() {
		var b contracts.BucketSummary
		if err := rows.Scan(&b.RunDate, &b.Label, &b.MeanForwardReturn, &b.Count, &b.WindowDays); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		byLabel[b.Label] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orderBuckets(byLabel), nil
}

// orderBuckets sorts by band; unknown labels are skipped
func orderBuckets(byLabel map[string]contracts.BucketSummary) []contracts.BucketSummary {
	out := make([]contracts.BucketSummary, 0, len(byLabel))
	for _, label := range contracts.BucketLabels {
		if b, ok := byLabel[label]; ok {
			out = append(out, b)
		}
	}
	return out
}
