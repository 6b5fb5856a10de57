package s1_scoring

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
)

// InstrumentScorer scores one instrument for one day (*Scorer in production)
type InstrumentScorer interface {
	Score(ctx context.Context, ticker string, target time.Time) (*contracts.ScoreRecord, error)
}

// Driver runs the daily scoring batch over the tracked universe
// ⭐ SSOT: 배치 점수 산출과 저장은 여기서만
type Driver struct {
	tickers contracts.TickerProvider
	scorer  InstrumentScorer
	store   contracts.ScoreStore
	metrics *metrics.Recorder
	logger  *logger.Logger

	stop      atomic.Bool
	onPersist []func(ctx context.Context)
	now       func() time.Time
}

// NewDriver creates a batch driver
func NewDriver(
	tickers contracts.TickerProvider,
	scorer InstrumentScorer,
	store contracts.ScoreStore,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Driver {
	return &Driver{
		tickers: tickers,
		scorer:  scorer,
		store:   store,
		metrics: rec,
		logger:  log.WithComponent("s1_batch"),
		now:     time.Now,
	}
}

// Stop asks the running batch to halt after the current instrument.
// A stop requested before a run starts halts that run before its first instrument.
func (d *Driver) Stop() {
	d.stop.Store(true)
}

// OnPersist registers a hook called after scores are written (cache invalidation)
func (d *Driver) OnPersist(fn func(ctx context.Context)) {
	d.onPersist = append(d.onPersist, fn)
}

func (d *Driver) persisted(ctx context.Context) {
	for _, fn := range d.onPersist {
		fn(ctx)
	}
}

func (d *Driver) stopRequested(ctx context.Context) bool {
	return d.stop.Load() || ctx.Err() != nil
}

// validateDate rejects zero dates and dates after today
func (d *Driver) validateDate(target time.Time) (time.Time, error) {
	if target.IsZero() {
		return time.Time{}, contracts.ErrInvalidDate
	}
	day := contracts.NormalizeDate(target)
	if day.After(contracts.NormalizeDate(d.now())) {
		return time.Time{}, fmt.Errorf("%s is in the future: %w", day.Format("2006-01-02"), contracts.ErrInvalidDate)
	}
	return day, nil
}

// RunScoring scores every tracked instrument for target and upserts the rows
// in one transaction. Failed instruments are listed in Errors; a persistence
// failure fails the whole run.
func (d *Driver) RunScoring(ctx context.Context, target time.Time) (*contracts.ScoringRun, error) {
	day, err := d.validateDate(target)
	if err != nil {
		return nil, err
	}
	defer d.stop.Store(false)

	start := time.Now()
	run := &contracts.ScoringRun{
		RunID:      uuid.New().String(),
		TargetDate: day,
		Errors:     make([]string, 0),
	}
	log := d.logger.WithFields(map[string]interface{}{
		"run_id": run.RunID,
		"date":   day.Format("2006-01-02"),
	})

	tickers, err := d.tickers.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	run.Tickers = len(tickers)
	log.WithField("tickers", len(tickers)).Info("Starting scoring run")

	records := make([]contracts.ScoreRecord, 0, len(tickers))
	for i, ticker := range tickers {
		if d.stopRequested(ctx) {
			run.Stopped = true
			log.WithFields(map[string]interface{}{
				"processed": i,
				"remaining": len(tickers) - i,
			}).Warn("Stop requested, finishing early")
			break
		}

		// 진행 중인 종목은 취소와 무관하게 끝까지 (중단은 종목 사이에서만)
		rec, err := d.scoreSafely(context.WithoutCancel(ctx), ticker, day)
		if err != nil {
			log.WithError(err).WithField("ticker", ticker).Error("Instrument failed")
			run.Errors = append(run.Errors, ticker)
			continue
		}
		records = append(records, *rec)
	}

	// 중단되어도 모은 결과는 저장
	if len(records) > 0 {
		persistCtx := context.WithoutCancel(ctx)
		if err := d.store.UpsertScores(persistCtx, records); err != nil {
			d.metrics.RecordRunFailed()
			log.WithError(err).Error("Scoring run rolled back")
			return nil, fmt.Errorf("persist scores: %w", err)
		}
		d.persisted(persistCtx)
	}
	run.Written = len(records)
	run.Duration = time.Since(start)

	d.metrics.RecordRun(run.Written, len(run.Errors), run.Stopped, run.Duration)
	log.WithFields(map[string]interface{}{
		"written":  run.Written,
		"errors":   len(run.Errors),
		"stopped":  run.Stopped,
		"duration": run.Duration.String(),
	}).Info("Scoring run completed")

	return run, nil
}

// ScoreOne scores and upserts a single instrument
func (d *Driver) ScoreOne(ctx context.Context, ticker string, target time.Time) (*contracts.ScoreRecord, error) {
	day, err := d.validateDate(target)
	if err != nil {
		return nil, err
	}
	ok, err := d.tickers.Exists(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("lookup ticker: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrUnknownTicker)
	}

	rec, err := d.scoreSafely(ctx, ticker, day)
	if err != nil {
		return nil, err
	}
	if err := d.store.UpsertScores(ctx, []contracts.ScoreRecord{*rec}); err != nil {
		return nil, fmt.Errorf("persist score: %w", err)
	}
	d.persisted(context.WithoutCancel(ctx))
	return rec, nil
}

// scoreSafely turns a panic inside one instrument into an error
func (d *Driver) scoreSafely(ctx context.Context, ticker string, day time.Time) (rec *contracts.ScoreRecord, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic scoring %s: %v", ticker, r)
		}
		d.metrics.ObserveInstrument(time.Since(start))
	}()

	return d.scorer.Score(ctx, ticker, day)
}
