package s1_scoring

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// makeBars builds consecutive daily bars ending at end, open = close
func makeBars(ticker string, end time.Time, closes []float64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.PriceBar{
			Ticker: ticker,
			Date:   end.AddDate(0, 0, i-len(closes)+1),
			Open:   c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func linear(n int, from, to float64) []float64 {
	out := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

type fakePrices struct {
	bars    map[string][]contracts.PriceBar
	err     map[string]error
	calls   int
	fetched func(ticker string) // runs after the bars are returned
}

func (f *fakePrices) GetBars(_ context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error) {
	f.calls++
	if err := f.err[ticker]; err != nil {
		return nil, err
	}
	out := make([]contracts.PriceBar, 0)
	for _, b := range f.bars[ticker] {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	if f.fetched != nil {
		f.fetched(ticker)
	}
	return out, nil
}

type fakeSentiment struct {
	scores map[string]float64
	err    error
}

func (f *fakeSentiment) GetSentiment(ctx context.Context, ticker string, _ time.Time) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.scores[ticker]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type fakeFundamentals struct {
	snaps map[string]*contracts.FundamentalSnapshot
	err   error
}

func (f *fakeFundamentals) GetFundamentals(ctx context.Context, ticker string) (*contracts.FundamentalSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.snaps[ticker], nil
}

type fakeTickers struct {
	tickers []string
	err     error
}

func (f *fakeTickers) ListTickers(context.Context) ([]string, error) {
	return f.tickers, f.err
}

func (f *fakeTickers) Exists(_ context.Context, ticker string) (bool, error) {
	for _, t := range f.tickers {
		if t == ticker {
			return true, nil
		}
	}
	return false, nil
}

type memStore struct {
	mu        sync.Mutex
	rows      map[contracts.ScoreKey]contracts.ScoreRecord
	upsertErr error
	upserts   int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[contracts.ScoreKey]contracts.ScoreRecord)}
}

func (m *memStore) UpsertScores(_ context.Context, records []contracts.ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, r := range records {
		m.rows[contracts.ScoreKey{Ticker: r.Ticker, Date: r.Date}] = r
	}
	return nil
}

func (m *memStore) GetScoresInRange(_ context.Context, from, to time.Time) ([]contracts.ScorePair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]contracts.ScorePair, 0)
	for k, r := range m.rows {
		if r.NextDayReturnPct == nil || k.Date.Before(from) || k.Date.After(to) {
			continue
		}
		out = append(out, contracts.ScorePair{Ticker: k.Ticker, Date: k.Date, Score: r.Score, NextDayReturnPct: *r.NextDayReturnPct})
	}
	return out, nil
}

func (m *memStore) GetPendingForward(_ context.Context, since time.Time) ([]contracts.ScoreKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]contracts.ScoreKey, 0)
	for k, r := range m.rows {
		if r.NextDayReturnPct == nil && !k.Date.Before(since) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (m *memStore) UpdateForward(_ context.Context, updates []contracts.ForwardUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		k := contracts.ScoreKey{Ticker: u.Ticker, Date: u.Date}
		r := m.rows[k]
		open, pct := u.NextDayOpen, u.NextDayReturnPct
		r.NextDayOpen, r.NextDayReturnPct = &open, &pct
		m.rows[k] = r
	}
	return nil
}

func (m *memStore) GetLatestScores(context.Context, int) ([]contracts.ScoreRecord, error) {
	return nil, nil
}

func (m *memStore) GetScoreHistory(context.Context, string, int) ([]contracts.ScoreRecord, error) {
	return nil, nil
}

func (m *memStore) get(ticker string, date time.Time) (contracts.ScoreRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[contracts.ScoreKey{Ticker: ticker, Date: date}]
	return r, ok
}
