package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/s0_data/quality"
	"github.com/wonny/scorecard/internal/s1_scoring"
	"github.com/wonny/scorecard/internal/scheduler"
	"github.com/wonny/scorecard/pkg/logger"
)

// ScoringRunner is satisfied by *s1_scoring.Driver
type ScoringRunner interface {
	RunScoring(ctx context.Context, target time.Time) (*contracts.ScoringRun, error)
}

// ForwardBackfiller is satisfied by *s1_scoring.Backfiller
type ForwardBackfiller interface {
	Run(ctx context.Context, since time.Time) (*s1_scoring.BackfillResult, error)
}

// CoverageChecker is satisfied by *quality.Gate
type CoverageChecker interface {
	Check(ctx context.Context, date time.Time) (*quality.Snapshot, error)
}

// ScoringJob scores yesterday's session, then backfills pending forward returns
// ⭐ SSOT: 일별 점수 스케줄은 이 Job에서만
type ScoringJob struct {
	driver       ScoringRunner
	backfiller   ForwardBackfiller
	gate         CoverageChecker
	schedule     string
	backfillDays int
	logger       *logger.Logger
	now          func() time.Time
}

// NewScoringJob creates a new scoring job. gate and backfiller may be nil.
func NewScoringJob(driver ScoringRunner, backfiller ForwardBackfiller, gate CoverageChecker, schedule string, backfillDays int, log *logger.Logger) *ScoringJob {
	return &ScoringJob{
		driver:       driver,
		backfiller:   backfiller,
		gate:         gate,
		schedule:     schedule,
		backfillDays: backfillDays,
		logger:       log,
		now:          time.Now,
	}
}

// Name returns the job name
func (j *ScoringJob) Name() string {
	return "daily_scoring"
}

// Schedule returns the cron schedule (every day at 7 PM by default)
func (j *ScoringJob) Schedule() string {
	return j.schedule
}

// Run executes the scoring for yesterday
func (j *ScoringJob) Run(ctx context.Context) (scheduler.Report, error) {
	target := contracts.NormalizeDate(j.now()).AddDate(0, 0, -1)
	log := j.logger.WithField("date", target.Format("2006-01-02"))
	log.Info("Starting scheduled scoring")

	// 1. 데이터 커버리지 확인 (경고만)
	if j.gate != nil {
		snapshot, err := j.gate.Check(ctx, target)
		if err != nil {
			log.WithError(err).Warn("Coverage check failed, continuing")
		} else if !snapshot.Passed {
			log.WithFields(map[string]interface{}{
				"total_tickers": snapshot.TotalTickers,
				"failures":      snapshot.Failures,
			}).Warn("Data coverage below threshold, but continuing with scoring")
		}
	}

	// 2. Score
	run, err := j.driver.RunScoring(ctx, target)
	if err != nil {
		return scheduler.Report{}, fmt.Errorf("run scoring: %w", err)
	}
	report := scheduler.Report{
		RunID:   run.RunID,
		Written: run.Written,
		Failed:  run.Errors,
		Stopped: run.Stopped,
	}

	log.WithFields(map[string]interface{}{
		"run_id":  run.RunID,
		"written": run.Written,
		"errors":  len(run.Errors),
		"stopped": run.Stopped,
	}).Info("Scheduled scoring completed")

	// 3. Backfill forward returns of earlier days
	if j.backfiller == nil || run.Stopped {
		return report, nil
	}
	since := target.AddDate(0, 0, -j.backfillDays)
	if _, err := j.backfiller.Run(ctx, since); err != nil {
		// 점수는 이미 저장됨: 재시도 시 같은 날짜를 다시 upsert
		return report, fmt.Errorf("backfill forward returns: %w", err)
	}

	return report, nil
}
