package strategyconfig

// Default returns the built-in scoring configuration
func Default() *Config {
	one := func(bull, bear int) Factor {
		return Factor{Weight: 1.0, BullishPoints: bull, BearishPoints: bear}
	}

	return &Config{
		Meta: Meta{
			StrategyID: "daily_signal_score",
			Version:    "1.0.0",
		},
		Fetch: Fetch{
			LookbackDays:  100,
			LookaheadDays: 4,
		},
		Factors: Factors{
			Sentiment:     Sentiment{Factor: one(2, -1), Positive: 0.15, Negative: -0.15},
			Momentum:      Momentum{Factor: one(1, -1), Days: 5, Positive: 3.0, Negative: 0.0},
			Volume:        Volume{Factor: one(1, 0), AvgDays: 20, Spike: 1.5},
			MovingAverage: MovingAverage{Factor: one(1, -1), Period: 50},
			RSI:           RSI{Factor: one(1, -1), Period: 14, Oversold: 30, Overbought: 70},
			MACD:          MACD{Factor: one(1, -1), Fast: 12, Slow: 26, Signal: 9},
			Bollinger:     Bollinger{Factor: one(1, -1), Window: 20, StdDev: 2.0},
			PERatio:       Valuation{Factor: one(1, -1), Low: 15, High: 30},
			DividendYield: Dividend{Factor: one(1, 0), Min: 0.02},
			DebtToEquity:  Valuation{Factor: one(1, -1), Low: 0.5, High: 1.5},
			PBRatio:       Valuation{Factor: one(1, -1), Low: 1.0, High: 3.0},
			PSRatio:       Valuation{Factor: one(1, -1), Low: 1.0, High: 4.0},
		},
		Analysis: Analysis{
			WindowDays: 90,
		},
	}
}
