package s1_scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/strategyconfig"
	"github.com/wonny/scorecard/pkg/logger"
)

const defaultFetchTimeout = 10 * time.Second

// Scorer computes the composite score of one instrument for one day
// ⭐ SSOT: 종목별 점수 계산은 여기서만
type Scorer struct {
	prices       contracts.PriceProvider
	sentiment    contracts.SentimentProvider
	fundamentals contracts.FundamentalsProvider
	config       *strategyconfig.Config
	factors      []Factor
	fetchTimeout time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

// NewScorer creates a scorer bound to an immutable strategy config.
// fundamentals may be nil, in which case every ratio scores neutral.
func NewScorer(
	prices contracts.PriceProvider,
	sentiment contracts.SentimentProvider,
	fundamentals contracts.FundamentalsProvider,
	cfg *strategyconfig.Config,
	fetchTimeout time.Duration,
	log *logger.Logger,
) *Scorer {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Scorer{
		prices:       prices,
		sentiment:    sentiment,
		fundamentals: fundamentals,
		config:       cfg,
		factors:      BuildFactors(cfg),
		fetchTimeout: fetchTimeout,
		logger:       log.WithComponent("s1_scorer"),
		now:          time.Now,
	}
}

// Score builds the ScoreRecord of ticker on target.
// Only a price fetch failure (or no history up to target) fails the instrument,
// or a ctx cancelled while fetching, which would otherwise degrade the record.
func (s *Scorer) Score(ctx context.Context, ticker string, target time.Time) (*contracts.ScoreRecord, error) {
	day := contracts.NormalizeDate(target)

	bars, err := s.fetchBars(ctx, ticker, day)
	if err != nil {
		return nil, fmt.Errorf("fetch prices %s: %w", ticker, err)
	}
	history, _ := splitAt(bars, day)
	if len(history) == 0 {
		return nil, fmt.Errorf("%s on %s: %w", ticker, day.Format("2006-01-02"), contracts.ErrNoPriceData)
	}

	in := &Inputs{
		Closes:       make([]float64, len(history)),
		Volumes:      make([]float64, len(history)),
		Sentiment:    s.fetchSentiment(ctx, ticker, day),
		Fundamentals: s.fetchFundamentals(ctx, ticker),
	}
	for i, b := range history {
		in.Closes[i] = b.Close
		in.Volumes[i] = float64(b.Volume)
	}
	// 취소로 실패한 조회를 중립으로 저장하지 않음
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score %s: %w", ticker, err)
	}

	rec := s.evaluate(ticker, day, in)

	fwd := AttachForward(history[len(history)-1].Close, bars, day)
	rec.NextDayOpen = fwd.NextOpen
	rec.NextDayReturnPct = fwd.ReturnPct

	s.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"date":    day.Format("2006-01-02"),
		"score":   rec.Score,
		"bars":    len(history),
		"forward": fwd.Known(),
	}).Debug("Instrument scored")

	return rec, nil
}

// evaluate runs the factor table over the inputs
func (s *Scorer) evaluate(ticker string, day time.Time, in *Inputs) *contracts.ScoreRecord {
	breakdown := make(contracts.Breakdown, len(s.factors))
	for _, f := range s.factors {
		breakdown[f.Name] = f.Evaluate(in)
	}

	rec := &contracts.ScoreRecord{
		Ticker:         ticker,
		Date:           day,
		Score:          breakdown.Total(),
		Breakdown:      breakdown,
		PriceChangePct: breakdown[contracts.FactorMomentum].Value,
		VolumeRatio:    breakdown[contracts.FactorVolume].Value,
		Sentiment:      in.Sentiment,
		MARelation:     contracts.MARelation(breakdown[contracts.FactorMARelation].Status),
		RSI:            breakdown[contracts.FactorRSI].Value,
		MACDSignal:     contracts.MACDSignal(breakdown[contracts.FactorMACD].Status),
		BandSignal:     contracts.BandSignal(breakdown[contracts.FactorBands].Status),
		UpdatedAt:      s.now().UTC(),
	}
	if f := in.Fundamentals; f != nil {
		rec.PERatio = f.PERatio
		rec.DividendYield = f.DividendYield
		rec.DebtToEquity = f.DebtToEquity
		rec.PBRatio = f.PBRatio
		rec.PSRatio = f.PSRatio
	}
	return rec
}

func (s *Scorer) fetchBars(ctx context.Context, ticker string, day time.Time) ([]contracts.PriceBar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	from := day.AddDate(0, 0, -s.config.Fetch.LookbackDays)
	to := day.AddDate(0, 0, s.config.Fetch.LookaheadDays)
	return s.prices.GetBars(ctx, ticker, from, to)
}

// fetchSentiment returns 0.0 when the record is missing or the fetch fails
func (s *Scorer) fetchSentiment(ctx context.Context, ticker string, day time.Time) float64 {
	if s.sentiment == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	v, err := s.sentiment.GetSentiment(ctx, ticker, day)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Sentiment unavailable, scoring neutral")
		return 0
	}
	if v == nil {
		return 0
	}
	return *v
}

// fetchFundamentals returns nil when the snapshot is missing or the fetch fails
func (s *Scorer) fetchFundamentals(ctx context.Context, ticker string) *contracts.FundamentalSnapshot {
	if s.fundamentals == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	snap, err := s.fundamentals.GetFundamentals(ctx, ticker)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Fundamentals unavailable, scoring neutral")
		return nil
	}
	return snap
}
