package s1_scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/strategyconfig"
)

func factorByName(t *testing.T, name contracts.FactorName) Factor {
	t.Helper()
	for _, f := range BuildFactors(strategyconfig.Default()) {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("factor %s not built", name)
	return Factor{}
}

func TestBuildFactors_CoversEveryFactorInOrder(t *testing.T) {
	factors := BuildFactors(strategyconfig.Default())
	require.Len(t, factors, len(contracts.AllFactors))
	for i, f := range factors {
		assert.Equal(t, contracts.AllFactors[i], f.Name)
		assert.Equal(t, 1.0, f.Weight)
	}
}

func TestSentimentFactor(t *testing.T) {
	f := factorByName(t, contracts.FactorSentiment)

	tests := []struct {
		name   string
		score  float64
		points int
	}{
		{"strong positive", 0.6, 2},
		{"just above", 0.1501, 2},
		{"on positive threshold", 0.15, 0},
		{"neutral", 0.0, 0},
		{"on negative threshold", -0.15, 0},
		{"negative", -0.4, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Evaluate(&Inputs{Sentiment: tt.score})
			assert.Equal(t, tt.points, res.Points)
			require.NotNil(t, res.Value)
			assert.Equal(t, tt.score, *res.Value)
		})
	}
}

func TestMomentumFactor(t *testing.T) {
	f := factorByName(t, contracts.FactorMomentum)

	t.Run("rising 21 closes is positive", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(21, 10, 12)})
		assert.Equal(t, 1, res.Points)
		require.NotNil(t, res.Value)
		assert.Greater(t, *res.Value, 3.0)
	})

	t.Run("small gain is neutral", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: []float64{100, 100, 100, 100, 100, 101}})
		assert.Equal(t, 0, res.Points)
		assert.InDelta(t, 1.0, *res.Value, 1e-9)
	})

	t.Run("any loss is negative", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: []float64{100, 100, 100, 100, 100, 99.9}})
		assert.Equal(t, -1, res.Points)
	})

	t.Run("five bars is undefined", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: []float64{1, 2, 3, 4, 5}})
		assert.Equal(t, 0, res.Points)
		assert.Nil(t, res.Value)
		assert.Equal(t, statusUnavailable, res.Status)
	})

	t.Run("zero start is undefined", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: []float64{0, 1, 1, 1, 1, 2}})
		assert.Nil(t, res.Value)
		assert.Zero(t, res.WeightedPoints)
	})
}

func TestVolumeFactor(t *testing.T) {
	f := factorByName(t, contracts.FactorVolume)

	vols := func(last float64) []float64 {
		v := make([]float64, 21)
		for i := range v {
			v[i] = 100
		}
		v[20] = last
		return v
	}

	zeroAvg := make([]float64, 21)
	zeroAvg[20] = 500

	tests := []struct {
		name    string
		volumes []float64
		points  int
		defined bool
		status  string
	}{
		{"spike", vols(200), 1, true, ""},
		{"on threshold", vols(150), 0, true, ""},
		{"normal", vols(90), 0, true, ""},
		{"short history", vols(200)[1:], 0, false, "unavailable"},
		{"zero average is normal volume", zeroAvg, 0, false, "normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Evaluate(&Inputs{Volumes: tt.volumes})
			assert.Equal(t, tt.points, res.Points)
			assert.Equal(t, tt.defined, res.Value != nil)
			assert.Equal(t, tt.status, res.Status)
		})
	}
}

func TestVolumeRatio(t *testing.T) {
	r, zeroAvg := VolumeRatio([]float64{100, 100, 300}, 2)
	assert.InDelta(t, 3.0, r, 1e-12)
	assert.False(t, zeroAvg)

	r, zeroAvg = VolumeRatio([]float64{0, 0, 300}, 2)
	assert.True(t, math.IsNaN(r))
	assert.True(t, zeroAvg)

	r, zeroAvg = VolumeRatio([]float64{100, 300}, 2)
	assert.True(t, math.IsNaN(r))
	assert.False(t, zeroAvg)
}

func TestMARelationFactor(t *testing.T) {
	f := factorByName(t, contracts.FactorMARelation)

	t.Run("thirty bars is unavailable", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(30, 10, 20)})
		assert.Equal(t, string(contracts.MAUnavailable), res.Status)
		assert.Equal(t, 0, res.Points)
	})

	t.Run("above", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(60, 10, 20)})
		assert.Equal(t, string(contracts.MAAbove), res.Status)
		assert.Equal(t, 1, res.Points)
	})

	t.Run("below", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(60, 20, 10)})
		assert.Equal(t, string(contracts.MABelow), res.Status)
		assert.Equal(t, -1, res.Points)
	})

	t.Run("equal is unavailable", func(t *testing.T) {
		flat := make([]float64, 50)
		for i := range flat {
			flat[i] = 10
		}
		res := f.Evaluate(&Inputs{Closes: flat})
		assert.Equal(t, string(contracts.MAUnavailable), res.Status)
		assert.Equal(t, 0, res.Points)
	})
}

func TestRSIFactor(t *testing.T) {
	f := factorByName(t, contracts.FactorRSI)

	t.Run("steady decline is oversold", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(30, 50, 20)})
		assert.Equal(t, 1, res.Points)
	})

	t.Run("steady rise is overbought", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(30, 20, 50)})
		assert.Equal(t, -1, res.Points)
	})

	t.Run("short history", func(t *testing.T) {
		res := f.Evaluate(&Inputs{Closes: linear(14, 20, 50)})
		assert.Nil(t, res.Value)
		assert.Equal(t, 0, res.Points)
	})
}

func TestFundamentalFactors(t *testing.T) {
	snap := func(pe, div, de, pb, ps *float64) *Inputs {
		return &Inputs{Fundamentals: &contracts.FundamentalSnapshot{
			PERatio: pe, DividendYield: div, DebtToEquity: de, PBRatio: pb, PSRatio: ps,
		}}
	}

	tests := []struct {
		name   string
		factor contracts.FactorName
		in     *Inputs
		points int
	}{
		{"pe cheap", contracts.FactorPERatio, snap(ptr(10), nil, nil, nil, nil), 1},
		{"pe zero is neutral", contracts.FactorPERatio, snap(ptr(0), nil, nil, nil, nil), 0},
		{"pe negative is neutral", contracts.FactorPERatio, snap(ptr(-5), nil, nil, nil, nil), 0},
		{"pe expensive", contracts.FactorPERatio, snap(ptr(45), nil, nil, nil, nil), -1},
		{"dividend high", contracts.FactorDividendYield, snap(nil, ptr(0.03), nil, nil, nil), 1},
		{"dividend zero is not penalized", contracts.FactorDividendYield, snap(nil, ptr(0), nil, nil, nil), 0},
		{"debt zero is bullish", contracts.FactorDebtToEquity, snap(nil, nil, ptr(0), nil, nil), 1},
		{"debt heavy", contracts.FactorDebtToEquity, snap(nil, nil, ptr(2), nil, nil), -1},
		{"pb below book", contracts.FactorPBRatio, snap(nil, nil, nil, ptr(0.8), nil), 1},
		{"pb rich", contracts.FactorPBRatio, snap(nil, nil, nil, ptr(3.5), nil), -1},
		{"ps cheap", contracts.FactorPSRatio, snap(nil, nil, nil, nil, ptr(0.5)), 1},
		{"ps on high threshold", contracts.FactorPSRatio, snap(nil, nil, nil, nil, ptr(4)), 0},
		{"null ratio", contracts.FactorPERatio, snap(nil, nil, nil, nil, nil), 0},
		{"no snapshot", contracts.FactorPBRatio, &Inputs{}, 0},
		{"nan ratio", contracts.FactorPSRatio, snap(nil, nil, nil, nil, ptr(math.NaN())), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := factorByName(t, tt.factor).Evaluate(tt.in)
			assert.Equal(t, tt.points, res.Points)
			assert.Equal(t, float64(tt.points), res.WeightedPoints)
		})
	}
}

func TestFactorWeightsScalePoints(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Factors.Sentiment.Weight = 0.5

	var sentiment Factor
	for _, f := range BuildFactors(cfg) {
		if f.Name == contracts.FactorSentiment {
			sentiment = f
		}
	}
	res := sentiment.Evaluate(&Inputs{Sentiment: 0.9})
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, 1.0, res.WeightedPoints)
	assert.Equal(t, 0.5, res.Weight)
}
