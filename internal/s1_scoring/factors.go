package s1_scoring

import (
	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/indicators"
	"github.com/wonny/scorecard/internal/strategyconfig"
)

const (
	// statusUnavailable marks an undefined observation in the breakdown
	statusUnavailable = "unavailable"
	// statusNormalVolume is a volume ratio with a zero average: no spike, 0 points
	statusNormalVolume = "normal"
)

// Inputs is everything the factors observe for one instrument and day
type Inputs struct {
	Closes       []float64 // oldest first, ending at the target date
	Volumes      []float64
	Sentiment    float64
	Fundamentals *contracts.FundamentalSnapshot // nil when unavailable
}

// Observation is the raw value a factor scores.
// Undefined observations always earn 0 points.
type Observation struct {
	Value   *float64
	Status  string
	Defined bool
}

// Rule awards Points when Match holds; the first matching rule wins
type Rule struct {
	Match  func(o Observation) bool
	Points int
}

// Factor is one row of the scoring table
type Factor struct {
	Name    contracts.FactorName
	Weight  float64
	Observe func(in *Inputs) Observation
	Rules   []Rule
}

// Evaluate observes the inputs and applies the rules
func (f Factor) Evaluate(in *Inputs) contracts.FactorResult {
	obs := f.Observe(in)
	res := contracts.FactorResult{
		Value:  obs.Value,
		Status: obs.Status,
		Weight: f.Weight,
	}
	if !obs.Defined {
		if res.Status == "" {
			res.Status = statusUnavailable
		}
		return res
	}

	for _, r := range f.Rules {
		if r.Match(obs) {
			res.Points = r.Points
			break
		}
	}
	res.WeightedPoints = float64(res.Points) * f.Weight
	return res
}

func numeric(v float64) Observation {
	if !indicators.IsFinite(v) {
		return Observation{}
	}
	return Observation{Value: &v, Defined: true}
}

func ratio(v *float64) Observation {
	if v == nil {
		return Observation{}
	}
	return numeric(*v)
}

func categorical(status string, defined bool) Observation {
	return Observation{Status: status, Defined: defined}
}

// numeric rules never match a defined observation without a value
func greaterThan(th float64) func(Observation) bool {
	return func(o Observation) bool { return o.Value != nil && *o.Value > th }
}

func lessThan(th float64) func(Observation) bool {
	return func(o Observation) bool { return o.Value != nil && *o.Value < th }
}

// within matches lo < v < hi, or lo <= v < hi when inclusive
func within(lo, hi float64, inclusive bool) func(Observation) bool {
	return func(o Observation) bool {
		if o.Value == nil {
			return false
		}
		v := *o.Value
		if inclusive {
			return v >= lo && v < hi
		}
		return v > lo && v < hi
	}
}

func hasStatus(status string) func(Observation) bool {
	return func(o Observation) bool { return o.Status == status }
}

func fundamental(pick func(*contracts.FundamentalSnapshot) *float64) func(in *Inputs) Observation {
	return func(in *Inputs) Observation {
		if in.Fundamentals == nil {
			return Observation{}
		}
		return ratio(pick(in.Fundamentals))
	}
}

// valuation scores 0 < v < low (or 0 <= v) as bullish and v > high as bearish
func valuation(name contracts.FactorName, c strategyconfig.Valuation, inclusiveZero bool,
	pick func(*contracts.FundamentalSnapshot) *float64) Factor {
	return Factor{
		Name:    name,
		Weight:  c.Weight,
		Observe: fundamental(pick),
		Rules: []Rule{
			{Match: within(0, c.Low, inclusiveZero), Points: c.BullishPoints},
			{Match: greaterThan(c.High), Points: c.BearishPoints},
		},
	}
}

// BuildFactors returns the scoring table in evaluation order
// ⭐ SSOT: 팩터 규칙 테이블은 여기서만
func BuildFactors(cfg *strategyconfig.Config) []Factor {
	f := cfg.Factors

	return []Factor{
		{
			Name:    contracts.FactorSentiment,
			Weight:  f.Sentiment.Weight,
			Observe: func(in *Inputs) Observation { return numeric(in.Sentiment) },
			Rules: []Rule{
				{Match: greaterThan(f.Sentiment.Positive), Points: f.Sentiment.BullishPoints},
				{Match: lessThan(f.Sentiment.Negative), Points: f.Sentiment.BearishPoints},
			},
		},
		{
			Name:    contracts.FactorMomentum,
			Weight:  f.Momentum.Weight,
			Observe: func(in *Inputs) Observation { return numeric(Momentum(in.Closes, f.Momentum.Days)) },
			Rules: []Rule{
				{Match: greaterThan(f.Momentum.Positive), Points: f.Momentum.BullishPoints},
				{Match: lessThan(f.Momentum.Negative), Points: f.Momentum.BearishPoints},
			},
		},
		{
			Name:    contracts.FactorVolume,
			Weight:  f.Volume.Weight,
			Observe: func(in *Inputs) Observation {
				r, zeroAvg := VolumeRatio(in.Volumes, f.Volume.AvgDays)
				if zeroAvg {
					return categorical(statusNormalVolume, true)
				}
				return numeric(r)
			},
			Rules: []Rule{
				{Match: greaterThan(f.Volume.Spike), Points: f.Volume.BullishPoints},
			},
		},
		{
			Name:   contracts.FactorMARelation,
			Weight: f.MovingAverage.Weight,
			Observe: func(in *Inputs) Observation {
				rel := CompareToMA(in.Closes, f.MovingAverage.Period)
				return categorical(string(rel), rel != contracts.MAUnavailable)
			},
			Rules: []Rule{
				{Match: hasStatus(string(contracts.MAAbove)), Points: f.MovingAverage.BullishPoints},
				{Match: hasStatus(string(contracts.MABelow)), Points: f.MovingAverage.BearishPoints},
			},
		},
		{
			Name:   contracts.FactorRSI,
			Weight: f.RSI.Weight,
			Observe: func(in *Inputs) Observation {
				v, _ := indicators.Last(indicators.RSI(in.Closes, f.RSI.Period))
				return numeric(v)
			},
			Rules: []Rule{
				{Match: lessThan(f.RSI.Oversold), Points: f.RSI.BullishPoints},
				{Match: greaterThan(f.RSI.Overbought), Points: f.RSI.BearishPoints},
			},
		},
		{
			Name:   contracts.FactorMACD,
			Weight: f.MACD.Weight,
			Observe: func(in *Inputs) Observation {
				m := indicators.MACD(in.Closes, f.MACD.Fast, f.MACD.Slow, f.MACD.Signal)
				sig := DetectMACDCross(m.Line, m.Signal)
				return categorical(string(sig), sig != contracts.MACDUnavailable)
			},
			Rules: []Rule{
				{Match: hasStatus(string(contracts.MACDBullishCross)), Points: f.MACD.BullishPoints},
				{Match: hasStatus(string(contracts.MACDBearishCross)), Points: f.MACD.BearishPoints},
			},
		},
		{
			Name:   contracts.FactorBands,
			Weight: f.Bollinger.Weight,
			Observe: func(in *Inputs) Observation {
				b := indicators.Bollinger(in.Closes, f.Bollinger.Window, f.Bollinger.StdDev)
				sig := DetectBandCross(in.Closes, b)
				return categorical(string(sig), sig != contracts.BandUnavailable)
			},
			Rules: []Rule{
				{Match: hasStatus(string(contracts.BandCrossLower)), Points: f.Bollinger.BullishPoints},
				{Match: hasStatus(string(contracts.BandCrossUpper)), Points: f.Bollinger.BearishPoints},
			},
		},
		valuation(contracts.FactorPERatio, f.PERatio, false,
			func(s *contracts.FundamentalSnapshot) *float64 { return s.PERatio }),
		{
			Name:    contracts.FactorDividendYield,
			Weight:  f.DividendYield.Weight,
			Observe: fundamental(func(s *contracts.FundamentalSnapshot) *float64 { return s.DividendYield }),
			Rules: []Rule{
				{Match: greaterThan(f.DividendYield.Min), Points: f.DividendYield.BullishPoints},
			},
		},
		valuation(contracts.FactorDebtToEquity, f.DebtToEquity, true,
			func(s *contracts.FundamentalSnapshot) *float64 { return s.DebtToEquity }),
		valuation(contracts.FactorPBRatio, f.PBRatio, false,
			func(s *contracts.FundamentalSnapshot) *float64 { return s.PBRatio }),
		valuation(contracts.FactorPSRatio, f.PSRatio, false,
			func(s *contracts.FundamentalSnapshot) *float64 { return s.PSRatio }),
	}
}
