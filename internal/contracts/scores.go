package contracts

import "time"

// PriceBar is one daily OHLCV bar (only open, close and volume are used)
type PriceBar struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// FundamentalSnapshot holds the valuation ratios of one instrument.
// Every ratio is independently nullable.
type FundamentalSnapshot struct {
	Ticker        string    `json:"ticker"`
	PERatio       *float64  `json:"pe_ratio"`
	DividendYield *float64  `json:"dividend_yield"` // fraction, 0.025 = 2.5%
	DebtToEquity  *float64  `json:"debt_to_equity"`
	PBRatio       *float64  `json:"pb_ratio"`
	PSRatio       *float64  `json:"ps_ratio"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// SentimentRecord is the authoritative sentiment of a ticker for one day
type SentimentRecord struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Score  float64   `json:"score"` // -1.0 ~ 1.0
}

// FactorName identifies one scoring factor
type FactorName string

const (
	FactorSentiment     FactorName = "sentiment"
	FactorMomentum      FactorName = "momentum"
	FactorVolume        FactorName = "volume"
	FactorMARelation    FactorName = "ma_relation"
	FactorRSI           FactorName = "rsi"
	FactorMACD          FactorName = "macd"
	FactorBands         FactorName = "bbands"
	FactorPERatio       FactorName = "pe_ratio"
	FactorDividendYield FactorName = "dividend_yield"
	FactorDebtToEquity  FactorName = "debt_equity"
	FactorPBRatio       FactorName = "pb_ratio"
	FactorPSRatio       FactorName = "ps_ratio"
)

// AllFactors lists factors in evaluation order
var AllFactors = []FactorName{
	FactorSentiment,
	FactorMomentum,
	FactorVolume,
	FactorMARelation,
	FactorRSI,
	FactorMACD,
	FactorBands,
	FactorPERatio,
	FactorDividendYield,
	FactorDebtToEquity,
	FactorPBRatio,
	FactorPSRatio,
}

// FactorResult is one factor's contribution to the composite score
type FactorResult struct {
	Value          *float64 `json:"value"`
	Status         string   `json:"status,omitempty"` // categorical observation (crossovers, MA relation)
	Points         int      `json:"points"`
	Weight         float64  `json:"weight"`
	WeightedPoints float64  `json:"weighted_points"`
}

// Breakdown maps every factor to its result
type Breakdown map[FactorName]FactorResult

// Total sums weighted points
func (b Breakdown) Total() float64 {
	total := 0.0
	for _, name := range AllFactors {
		if r, ok := b[name]; ok {
			total += r.WeightedPoints
		}
	}
	return total
}

// MARelation is the close's position against the 50-day SMA
type MARelation string

const (
	MAAbove       MARelation = "above"
	MABelow       MARelation = "below"
	MAUnavailable MARelation = "unavailable"
)

// MACDSignal is the MACD line vs signal line crossover at the latest bar
type MACDSignal string

const (
	MACDBullishCross MACDSignal = "bullish_cross"
	MACDBearishCross MACDSignal = "bearish_cross"
	MACDNeutral      MACDSignal = "neutral"
	MACDUnavailable  MACDSignal = "unavailable"
)

// BandSignal is the close vs Bollinger band crossover at the latest bar
type BandSignal string

const (
	BandCrossLower  BandSignal = "cross_lower"
	BandCrossUpper  BandSignal = "cross_upper"
	BandNeutral     BandSignal = "neutral"
	BandUnavailable BandSignal = "unavailable"
)

// ScoreRecord is the persisted daily score of one instrument
// ⭐ SSOT: (ticker, date) 당 하나의 점수
type ScoreRecord struct {
	Ticker    string    `json:"ticker"`
	Date      time.Time `json:"date"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`

	// Technical
	PriceChangePct *float64   `json:"price_change_pct"`
	VolumeRatio    *float64   `json:"volume_ratio"`
	Sentiment      float64    `json:"sentiment"`
	MARelation     MARelation `json:"ma_relation"`
	RSI            *float64   `json:"rsi"`
	MACDSignal     MACDSignal `json:"macd_signal"`
	BandSignal     BandSignal `json:"band_signal"`

	// Fundamentals
	PERatio       *float64 `json:"pe_ratio"`
	DividendYield *float64 `json:"dividend_yield"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	PBRatio       *float64 `json:"pb_ratio"`
	PSRatio       *float64 `json:"ps_ratio"`

	// 다음 거래일 시가가 생기기 전까지 nil
	NextDayOpen      *float64 `json:"next_day_open"`
	NextDayReturnPct *float64 `json:"next_day_return_pct"`

	UpdatedAt time.Time `json:"updated_at"`
}

// HasForward reports whether the forward return is known
func (r *ScoreRecord) HasForward() bool {
	return r.NextDayReturnPct != nil
}

// ScoreKey identifies one ScoreRecord
type ScoreKey struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
}

// ScorePair is a score with its realized next-day return
type ScorePair struct {
	Ticker           string    `json:"ticker"`
	Date             time.Time `json:"date"`
	Score            float64   `json:"score"`
	NextDayReturnPct float64   `json:"next_day_return_pct"`
}

// ForwardUpdate fills the forward fields of an existing ScoreRecord
type ForwardUpdate struct {
	Ticker           string
	Date             time.Time
	NextDayOpen      float64
	NextDayReturnPct float64
}

// ScoringRun summarizes one batch scoring pass
type ScoringRun struct {
	RunID      string        `json:"run_id"`
	TargetDate time.Time     `json:"target_date"`
	Tickers    int           `json:"tickers"`
	Written    int           `json:"written"`
	Errors     []string      `json:"errors"`
	Stopped    bool          `json:"stopped"`
	Duration   time.Duration `json:"duration"`
}

// NormalizeDate truncates t to its calendar date in UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
