package scheduler

import (
	"context"
	"time"
)

// Job is a pipeline stage the scheduler can run on a cron schedule
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes one pass and reports what it wrote
	Run(ctx context.Context) (Report, error)

	// Schedule returns the cron expression, with a leading seconds field
	// Examples: "0 0 19 * * *" (every day at 7 PM), "@weekly"
	Schedule() string
}

// Report is what one pass of a pipeline job produced
type Report struct {
	RunID   string   `json:"run_id,omitempty"` // scoring run id
	Written int      `json:"written"`          // score rows or bucket rows
	Failed  []string `json:"failed,omitempty"` // tickers skipped by the scorer
	Stopped bool     `json:"stopped,omitempty"`
}

// Partial reports a pass that succeeded but did not cover the whole universe
func (r Report) Partial() bool {
	return r.Stopped || len(r.Failed) > 0
}

// JobResult is one scheduled execution, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Report    Report        `json:"report"`
}

// maxHistory is the number of results kept per job
const maxHistory = 100

// JobHistory keeps the latest results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest n results
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n == 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// GetFailedResults returns every failed result
func (h *JobHistory) GetFailedResults() []JobResult {
	return h.filter(func(r JobResult) bool { return !r.Success })
}

// GetPartialResults returns successful runs that stopped early or skipped tickers
func (h *JobHistory) GetPartialResults() []JobResult {
	return h.filter(func(r JobResult) bool { return r.Success && r.Report.Partial() })
}

func (h *JobHistory) filter(keep func(JobResult) bool) []JobResult {
	out := make([]JobResult, 0)
	for _, r := range h.Results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// LastReport returns the report of the latest successful run
func (h *JobHistory) LastReport() (Report, bool) {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success {
			return h.Results[i].Report, true
		}
	}
	return Report{}, false
}

// GetSuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) GetSuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-len(h.GetFailedResults())) / float64(len(h.Results))
}
