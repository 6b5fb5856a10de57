package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/database"
)

// ScoreRepository implements contracts.ScoreStore over scoring.daily_scores
// ⭐ SSOT: 점수 데이터 저장/조회는 여기서만
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

const scoreColumns = `
	ticker, score_date, score, breakdown,
	price_change_pct, volume_ratio, sentiment_score, ma_relation, rsi, macd_signal, band_signal,
	pe_ratio, dividend_yield, debt_to_equity, pb_ratio, ps_ratio,
	next_day_open, next_day_return_pct, updated_at`

// 재계산 시 forward 값이 비어 있으면 기존 값을 유지
const upsertScoreQuery = `
	INSERT INTO scoring.daily_scores (` + scoreColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (ticker, score_date) DO UPDATE SET
		score = EXCLUDED.score,
		breakdown = EXCLUDED.breakdown,
		price_change_pct = EXCLUDED.price_change_pct,
		volume_ratio = EXCLUDED.volume_ratio,
		sentiment_score = EXCLUDED.sentiment_score,
		ma_relation = EXCLUDED.ma_relation,
		rsi = EXCLUDED.rsi,
		macd_signal = EXCLUDED.macd_signal,
		band_signal = EXCLUDED.band_signal,
		pe_ratio = EXCLUDED.pe_ratio,
		dividend_yield = EXCLUDED.dividend_yield,
		debt_to_equity = EXCLUDED.debt_to_equity,
		pb_ratio = EXCLUDED.pb_ratio,
		ps_ratio = EXCLUDED.ps_ratio,
		next_day_open = COALESCE(EXCLUDED.next_day_open, scoring.daily_scores.next_day_open),
		next_day_return_pct = COALESCE(EXCLUDED.next_day_return_pct, scoring.daily_scores.next_day_return_pct),
		updated_at = EXCLUDED.updated_at
`

// UpsertScores writes every record in one transaction; any failure rolls back all rows
func (r *ScoreRepository) UpsertScores(ctx context.Context, records []contracts.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range records {
		args, err := upsertArgs(&records[i])
		if err != nil {
			return err
		}
		batch.Queue(upsertScoreQuery, args...)
	}

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for _, rec := range records {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("upsert score %s %s: %w", rec.Ticker, rec.Date.Format("2006-01-02"), err)
			}
		}
		return br.Close()
	})
}

func upsertArgs(rec *contracts.ScoreRecord) ([]interface{}, error) {
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown %s: %w", rec.Ticker, err)
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return []interface{}{
		rec.Ticker, contracts.NormalizeDate(rec.Date), rec.Score, breakdown,
		rec.PriceChangePct, rec.VolumeRatio, rec.Sentiment, string(rec.MARelation), rec.RSI,
		string(rec.MACDSignal), string(rec.BandSignal),
		rec.PERatio, rec.DividendYield, rec.DebtToEquity, rec.PBRatio, rec.PSRatio,
		rec.NextDayOpen, rec.NextDayReturnPct, updatedAt,
	}, nil
}

// GetScoresInRange returns (score, forward return) pairs dated within [from, to]
func (r *ScoreRepository) GetScoresInRange(ctx context.Context, from, to time.Time) ([]contracts.ScorePair, error) {
	query := `
		SELECT ticker, score_date, score, next_day_return_pct
		FROM scoring.daily_scores
		WHERE score_date BETWEEN $1 AND $2
		  AND next_day_return_pct IS NOT NULL
		ORDER BY score_date, ticker
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query score pairs: %w", err)
	}
	defer rows.Close()

	pairs := make([]contracts.ScorePair, 0)
	for rows.Next() {
		var p contracts.ScorePair
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Score, &p.NextDayReturnPct); err != nil {
			return nil, fmt.Errorf("failed to scan score pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return pairs, nil
}

// GetPendingForward returns keys of scores dated >= since without a forward return
func (r *ScoreRepository) GetPendingForward(ctx context.Context, since time.Time) ([]contracts.ScoreKey, error) {
	query := `
		SELECT ticker, score_date
		FROM scoring.daily_scores
		WHERE score_date >= $1 AND next_day_return_pct IS NULL
		ORDER BY score_date, ticker
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending scores: %w", err)
	}
	defer rows.Close()

	keys := make([]contracts.ScoreKey, 0)
	for rows.Next() {
		var k contracts.ScoreKey
		if err := rows.Scan(&k.Ticker, &k.Date); err != nil {
			return nil, fmt.Errorf("failed to scan score key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// UpdateForward fills only the forward-return columns
func (r *ScoreRepository) UpdateForward(ctx context.Context, updates []contracts.ForwardUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `
		UPDATE scoring.daily_scores
		SET next_day_open = $3, next_day_return_pct = $4, updated_at = NOW()
		WHERE ticker = $1 AND score_date = $2
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.Ticker, contracts.NormalizeDate(u.Date), u.NextDayOpen, u.NextDayReturnPct)
	}

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for range updates {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to update forward return: %w", err)
			}
		}
		return br.Close()
	})
}

// GetLatestScores returns the most recent score date's rows, highest score first
func (r *ScoreRepository) GetLatestScores(ctx context.Context, limit int) ([]contracts.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM scoring.daily_scores
		WHERE score_date = (SELECT MAX(score_date) FROM scoring.daily_scores)
		ORDER BY score DESC, ticker
		LIMIT $1
	`
	return r.queryRecords(ctx, query, limit)
}

// GetScoreHistory returns a ticker's scores, newest first
func (r *ScoreRepository) GetScoreHistory(ctx context.Context, ticker string, limit int) ([]contracts.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM scoring.daily_scores
		WHERE ticker = $1
		ORDER BY score_date DESC
		LIMIT $2
	`
	return r.queryRecords(ctx, query, ticker, limit)
}

func (r *ScoreRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]contracts.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.ScoreRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*contracts.ScoreRecord, error) {
	var (
		rec       contracts.ScoreRecord
		breakdown []byte
		sentiment *float64
		ma, macd  string
		band      string
	)
	err := row.Scan(
		&rec.Ticker, &rec.Date, &rec.Score, &breakdown,
		&rec.PriceChangePct, &rec.VolumeRatio, &sentiment, &ma, &rec.RSI, &macd, &band,
		&rec.PERatio, &rec.DividendYield, &rec.DebtToEquity, &rec.PBRatio, &rec.PSRatio,
		&rec.NextDayOpen, &rec.NextDayReturnPct, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan score: %w", err)
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &rec.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown %s: %w", rec.Ticker, err)
		}
	}
	if sentiment != nil {
		rec.Sentiment = *sentiment
	}
	rec.MARelation = contracts.MARelation(ma)
	rec.MACDSignal = contracts.MACDSignal(macd)
	rec.BandSignal = contracts.BandSignal(band)
	return &rec, nil
}
