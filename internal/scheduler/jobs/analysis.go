package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/scheduler"
	"github.com/wonny/scorecard/pkg/logger"
)

// BucketAnalyzer is satisfied by *s2_performance.Analyzer
type BucketAnalyzer interface {
	Analyze(ctx context.Context, windowDays int) (*contracts.AnalysisRun, error)
}

// AnalysisJob recomputes the bucketed performance summary
type AnalysisJob struct {
	analyzer   BucketAnalyzer
	schedule   string
	windowDays int
	logger     *logger.Logger
}

// NewAnalysisJob creates a new analysis job
func NewAnalysisJob(analyzer BucketAnalyzer, schedule string, windowDays int, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{
		analyzer:   analyzer,
		schedule:   schedule,
		windowDays: windowDays,
		logger:     log,
	}
}

// Name returns the job name
func (j *AnalysisJob) Name() string {
	return "performance_analysis"
}

// Schedule returns the cron schedule (Sunday 8 PM by default)
func (j *AnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes the analysis
func (j *AnalysisJob) Run(ctx context.Context) (scheduler.Report, error) {
	j.logger.WithField("window_days", j.windowDays).Info("Starting scheduled performance analysis")

	run, err := j.analyzer.Analyze(ctx, j.windowDays)
	if err != nil {
		return scheduler.Report{}, fmt.Errorf("analyze: %w", err)
	}

	for _, b := range run.Buckets {
		fields := map[string]interface{}{
			"bucket": b.Label,
			"count":  b.Count,
		}
		if b.MeanForwardReturn != nil {
			fields["mean_return_pct"] = *b.MeanForwardReturn
		}
		j.logger.WithFields(fields).Info("Bucket summary")
	}

	return scheduler.Report{Written: len(run.Buckets)}, nil
}
