package s1_scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
)

// closeLookback covers weekends and holidays when looking for the scored close
const closeLookback = 7

// BackfillResult summarizes one backfill pass
type BackfillResult struct {
	Pending int `json:"pending"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Backfiller fills forward returns of scores persisted before the next bar existed.
// Only the forward fields are written; stored scores are never recomputed.
type Backfiller struct {
	store         contracts.ScoreStore
	prices        contracts.PriceProvider
	lookaheadDays int
	fetchTimeout  time.Duration
	logger        *logger.Logger
}

// NewBackfiller creates a backfiller
func NewBackfiller(store contracts.ScoreStore, prices contracts.PriceProvider, lookaheadDays int, fetchTimeout time.Duration, log *logger.Logger) *Backfiller {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Backfiller{
		store:         store,
		prices:        prices,
		lookaheadDays: lookaheadDays,
		fetchTimeout:  fetchTimeout,
		logger:        log.WithComponent("s1_backfill"),
	}
}

// Run backfills every pending score dated on or after since
func (b *Backfiller) Run(ctx context.Context, since time.Time) (*BackfillResult, error) {
	pending, err := b.store.GetPendingForward(ctx, contracts.NormalizeDate(since))
	if err != nil {
		return nil, fmt.Errorf("load pending forward returns: %w", err)
	}

	result := &BackfillResult{Pending: len(pending)}
	updates := make([]contracts.ForwardUpdate, 0, len(pending))

	for _, key := range pending {
		if ctx.Err() != nil {
			break
		}

		fwd, err := b.lookup(ctx, key)
		if err != nil {
			b.logger.WithError(err).WithField("ticker", key.Ticker).Warn("Backfill lookup failed")
			result.Failed++
			continue
		}
		if !fwd.Known() {
			continue
		}
		updates = append(updates, contracts.ForwardUpdate{
			Ticker:           key.Ticker,
			Date:             key.Date,
			NextDayOpen:      *fwd.NextOpen,
			NextDayReturnPct: *fwd.ReturnPct,
		})
	}

	if len(updates) > 0 {
		if err := b.store.UpdateForward(context.WithoutCancel(ctx), updates); err != nil {
			return nil, fmt.Errorf("update forward returns: %w", err)
		}
	}
	result.Updated = len(updates)

	b.logger.WithFields(map[string]interface{}{
		"since":   since.Format("2006-01-02"),
		"pending": result.Pending,
		"updated": result.Updated,
		"failed":  result.Failed,
	}).Info("Forward returns backfilled")

	return result, nil
}

func (b *Backfiller) lookup(ctx context.Context, key contracts.ScoreKey) (ForwardReturn, error) {
	ctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()

	day := contracts.NormalizeDate(key.Date)
	bars, err := b.prices.GetBars(ctx, key.Ticker, day.AddDate(0, 0, -closeLookback), day.AddDate(0, 0, b.lookaheadDays))
	if err != nil {
		return ForwardReturn{}, err
	}

	history, _ := splitAt(bars, day)
	if len(history) == 0 {
		return ForwardReturn{}, nil
	}
	return AttachForward(history[len(history)-1].Close, bars, day), nil
}
