package strategyconfig

// Config는 일별 점수 산출과 성과 분석의 전체 설정 (불변)
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Fetch    Fetch    `yaml:"fetch" json:"fetch"`
	Factors  Factors  `yaml:"factors" json:"factors"`
	Analysis Analysis `yaml:"analysis" json:"analysis"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Fetch 가격 조회 구간 (calendar days)
type Fetch struct {
	LookbackDays  int `yaml:"lookback_days" json:"lookback_days"`
	LookaheadDays int `yaml:"lookahead_days" json:"lookahead_days"` // forward return 용
}

// Factor is shared by every factor: weight and the points of each rule
type Factor struct {
	Weight        float64 `yaml:"weight" json:"weight"`
	BullishPoints int     `yaml:"bullish_points" json:"bullish_points"`
	BearishPoints int     `yaml:"bearish_points" json:"bearish_points"`
}

// Factors 12개 팩터
type Factors struct {
	Sentiment     Sentiment     `yaml:"sentiment" json:"sentiment"`
	Momentum      Momentum      `yaml:"momentum" json:"momentum"`
	Volume        Volume        `yaml:"volume" json:"volume"`
	MovingAverage MovingAverage `yaml:"ma_relation" json:"ma_relation"`
	RSI           RSI           `yaml:"rsi" json:"rsi"`
	MACD          MACD          `yaml:"macd" json:"macd"`
	Bollinger     Bollinger     `yaml:"bbands" json:"bbands"`
	PERatio       Valuation     `yaml:"pe_ratio" json:"pe_ratio"`
	DividendYield Dividend      `yaml:"dividend_yield" json:"dividend_yield"`
	DebtToEquity  Valuation     `yaml:"debt_equity" json:"debt_equity"`
	PBRatio       Valuation     `yaml:"pb_ratio" json:"pb_ratio"`
	PSRatio       Valuation     `yaml:"ps_ratio" json:"ps_ratio"`
}

type Sentiment struct {
	Factor   `yaml:",inline"`
	Positive float64 `yaml:"positive" json:"positive"` // score > positive → bullish
	Negative float64 `yaml:"negative" json:"negative"` // score < negative → bearish
}

type Momentum struct {
	Factor   `yaml:",inline"`
	Days     int     `yaml:"days" json:"days"`
	Positive float64 `yaml:"positive_pct" json:"positive_pct"`
	Negative float64 `yaml:"negative_pct" json:"negative_pct"`
}

type Volume struct {
	Factor  `yaml:",inline"`
	AvgDays int     `yaml:"avg_days" json:"avg_days"`
	Spike   float64 `yaml:"spike_ratio" json:"spike_ratio"`
}

type MovingAverage struct {
	Factor `yaml:",inline"`
	Period int `yaml:"period" json:"period"`
}

type RSI struct {
	Factor     `yaml:",inline"`
	Period     int     `yaml:"period" json:"period"`
	Oversold   float64 `yaml:"oversold" json:"oversold"`
	Overbought float64 `yaml:"overbought" json:"overbought"`
}

type MACD struct {
	Factor `yaml:",inline"`
	Fast   int `yaml:"fast" json:"fast"`
	Slow   int `yaml:"slow" json:"slow"`
	Signal int `yaml:"signal" json:"signal"`
}

type Bollinger struct {
	Factor `yaml:",inline"`
	Window int     `yaml:"window" json:"window"`
	StdDev float64 `yaml:"std_dev" json:"std_dev"`
}

// Valuation: low 미만(양수) → bullish, high 초과 → bearish
type Valuation struct {
	Factor `yaml:",inline"`
	Low    float64 `yaml:"low" json:"low"`
	High   float64 `yaml:"high" json:"high"`
}

// Dividend: min 초과 → bullish, 감점 없음
type Dividend struct {
	Factor `yaml:",inline"`
	Min    float64 `yaml:"min" json:"min"`
}

// Analysis 성과 분석
type Analysis struct {
	WindowDays int `yaml:"window_days" json:"window_days"`
}

// MinBars returns the history each price factor needs
func (f Factors) MinBars() map[string]int {
	return map[string]int{
		"momentum":    f.Momentum.Days + 1,
		"volume":      f.Volume.AvgDays + 1,
		"ma_relation": f.MovingAverage.Period,
		"rsi":         f.RSI.Period + 1,
		"macd":        f.MACD.Slow + f.MACD.Signal,
		"bbands":      f.Bollinger.Window + 1,
	}
}
