package s0_data

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
)

const (
	importDateLayout = "2006-01-02"
	barBatchSize     = 500
)

// TickerWriter is satisfied by *TickerRepository
type TickerWriter interface {
	Upsert(ctx context.Context, ticker, name, sector string) error
}

// BarWriter is satisfied by *PriceRepository
type BarWriter interface {
	SaveBars(ctx context.Context, bars []contracts.PriceBar) error
}

// SentimentWriter is satisfied by *SentimentRepository
type SentimentWriter interface {
	Save(ctx context.Context, rec contracts.SentimentRecord, summary string) error
}

// tickerRow: ticker,name,sector
type tickerRow struct {
	Ticker string `csv:"ticker"`
	Name   string `csv:"name"`
	Sector string `csv:"sector"`
}

// barRow: ticker,date,open,close,volume
type barRow struct {
	Ticker string  `csv:"ticker"`
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

// sentimentRow: ticker,date,score[,summary]
type sentimentRow struct {
	Ticker  string  `csv:"ticker"`
	Date    string  `csv:"date"`
	Score   float64 `csv:"score"`
	Summary string  `csv:"summary"`
}

// Importer seeds the input tables from CSV exports
// ⭐ SSOT: 입력 데이터 적재는 여기서만
type Importer struct {
	tickers   TickerWriter
	prices    BarWriter
	sentiment SentimentWriter
	logger    *logger.Logger
}

// NewImporter creates an importer over the input repositories
func NewImporter(tickers TickerWriter, prices BarWriter, sentiment SentimentWriter, log *logger.Logger) *Importer {
	return &Importer{
		tickers:   tickers,
		prices:    prices,
		sentiment: sentiment,
		logger:    log.WithComponent("s0_import"),
	}
}

// ImportTickers registers every ticker of r as active
func (im *Importer) ImportTickers(ctx context.Context, r io.Reader) (int, error) {
	var rows []tickerRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("decode tickers: %w", err)
	}

	for i, row := range rows {
		ticker := normalizeTicker(row.Ticker)
		if ticker == "" {
			return i, fmt.Errorf("tickers row %d: empty ticker", i+2)
		}
		if err := im.tickers.Upsert(ctx, ticker, strings.TrimSpace(row.Name), strings.TrimSpace(row.Sector)); err != nil {
			return i, fmt.Errorf("upsert ticker %s: %w", ticker, err)
		}
	}

	im.logger.WithField("count", len(rows)).Info("Tickers imported")
	return len(rows), nil
}

// ImportBars validates every row first, then upserts in batches
func (im *Importer) ImportBars(ctx context.Context, r io.Reader) (int, error) {
	var rows []barRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]contracts.PriceBar, 0, len(rows))
	for i, row := range rows {
		bar, err := row.toBar()
		if err != nil {
			return 0, fmt.Errorf("bars row %d: %w", i+2, err)
		}
		bars = append(bars, bar)
	}

	for start := 0; start < len(bars); start += barBatchSize {
		end := start + barBatchSize
		if end > len(bars) {
			end = len(bars)
		}
		if err := im.prices.SaveBars(ctx, bars[start:end]); err != nil {
			return start, fmt.Errorf("save bars: %w", err)
		}
	}

	im.logger.WithField("count", len(bars)).Info("Price bars imported")
	return len(bars), nil
}

// ImportSentiment appends one sentiment record per row
func (im *Importer) ImportSentiment(ctx context.Context, r io.Reader) (int, error) {
	var rows []sentimentRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("decode sentiment: %w", err)
	}

	for i, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return i, fmt.Errorf("sentiment row %d: %w", i+2, err)
		}
		if err := im.sentiment.Save(ctx, rec, strings.TrimSpace(row.Summary)); err != nil {
			return i, fmt.Errorf("save sentiment %s: %w", rec.Ticker, err)
		}
	}

	im.logger.WithField("count", len(rows)).Info("Sentiment imported")
	return len(rows), nil
}

func (row barRow) toBar() (contracts.PriceBar, error) {
	ticker := normalizeTicker(row.Ticker)
	if ticker == "" {
		return contracts.PriceBar{}, fmt.Errorf("empty ticker")
	}
	date, err := parseImportDate(row.Date)
	if err != nil {
		return contracts.PriceBar{}, err
	}
	if !positive(row.Open) || !positive(row.Close) {
		return contracts.PriceBar{}, fmt.Errorf("%s %s: prices must be positive", ticker, row.Date)
	}
	if row.Volume < 0 {
		return contracts.PriceBar{}, fmt.Errorf("%s %s: negative volume", ticker, row.Date)
	}
	return contracts.PriceBar{Ticker: ticker, Date: date, Open: row.Open, Close: row.Close, Volume: row.Volume}, nil
}

func (row sentimentRow) toRecord() (contracts.SentimentRecord, error) {
	ticker := normalizeTicker(row.Ticker)
	if ticker == "" {
		return contracts.SentimentRecord{}, fmt.Errorf("empty ticker")
	}
	date, err := parseImportDate(row.Date)
	if err != nil {
		return contracts.SentimentRecord{}, err
	}
	if math.IsNaN(row.Score) || row.Score < -1 || row.Score > 1 {
		return contracts.SentimentRecord{}, fmt.Errorf("%s %s: score %v outside [-1, 1]", ticker, row.Date, row.Score)
	}
	return contracts.SentimentRecord{Ticker: ticker, Date: date, Score: row.Score}, nil
}

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func parseImportDate(s string) (time.Time, error) {
	t, err := time.Parse(importDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, contracts.ErrInvalidDate)
	}
	return t, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
