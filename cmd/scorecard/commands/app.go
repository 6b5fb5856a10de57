package commands

import (
	"context"
	"fmt"

	"github.com/wonny/scorecard/internal/data/repos"
	"github.com/wonny/scorecard/internal/external/fundamentals"
	"github.com/wonny/scorecard/internal/s0_data"
	"github.com/wonny/scorecard/internal/s0_data/quality"
	"github.com/wonny/scorecard/internal/s1_scoring"
	"github.com/wonny/scorecard/internal/s2_performance"
	"github.com/wonny/scorecard/internal/strategyconfig"
	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/database"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
	"github.com/wonny/scorecard/pkg/redis"
)

const cachePrefix = "scorecard"

// app holds every wired component a command may need
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	rdb      *redis.Client
	metrics  *metrics.Recorder
	strategy *strategyconfig.Config

	scores  *repos.ScoreRepository
	buckets *repos.PerformanceRepository

	importer   *s0_data.Importer
	driver     *s1_scoring.Driver
	backfiller *s1_scoring.Backfiller
	analyzer   *s2_performance.Analyzer
	gate       *quality.Gate
}

// newApp loads config and wires the pipeline
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyPath != "" {
		cfg.Scoring.StrategyPath = strategyPath
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy thresholds (immutable for the process lifetime)
	strategy, err := strategyconfig.LoadOrDefault(cfg.Scoring.StrategyPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	if hash, err := strategyconfig.Hash(strategy); err == nil {
		log.WithFields(map[string]interface{}{
			"version": strategy.Meta.Version,
			"hash":    hash,
		}).Info("Strategy loaded")
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	rec := metrics.New()

	// 6. Repositories and providers
	tickers := s0_data.NewTickerRepository(db.Pool)
	prices := s0_data.NewPriceRepository(db.Pool)
	sentiment := s0_data.NewSentimentRepository(db.Pool)
	scores := repos.NewScoreRepository(db.Pool)
	buckets := repos.NewPerformanceRepository(db.Pool)
	fundProvider := fundamentals.Build(cfg, rdb, rec, log)

	// 7. Scoring and analysis
	scorer := s1_scoring.NewScorer(prices, sentiment, fundProvider, strategy, cfg.Scoring.FetchTimeout, log)
	driver := s1_scoring.NewDriver(tickers, scorer, scores, rec, log)

	// 점수 저장 시 API 캐시 무효화 (cron, CLI, API 실행 모두)
	if rdb.Enabled() {
		cache := redis.NewCache(rdb, cachePrefix)
		driver.OnPersist(func(ctx context.Context) {
			if err := cache.InvalidateLatestScores(ctx); err != nil {
				log.WithError(err).Warn("Failed to invalidate latest scores cache")
			}
		})
	}

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		rdb:        rdb,
		metrics:    rec,
		strategy:   strategy,
		scores:     scores,
		buckets:    buckets,
		importer:   s0_data.NewImporter(tickers, prices, sentiment, log),
		driver:     driver,
		backfiller: s1_scoring.NewBackfiller(scores, prices, strategy.Fetch.LookaheadDays, cfg.Scoring.FetchTimeout, log),
		analyzer:   s2_performance.NewAnalyzer(scores, buckets, rec, log),
		gate:       quality.NewGate(db.Pool, quality.DefaultConfig()),
	}, nil
}

// cache returns the API read cache, nil when Redis is disabled
func (a *app) cache() *redis.Cache {
	if !a.rdb.Enabled() {
		return nil
	}
	return redis.NewCache(a.rdb, cachePrefix)
}

// Close releases database and Redis connections
func (a *app) Close() {
	if err := a.rdb.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}

// defaultWindow is the analysis window: the strategy file first, then the environment
func (a *app) defaultWindow() int {
	if a.strategy.Analysis.WindowDays > 0 {
		return a.strategy.Analysis.WindowDays
	}
	return a.cfg.Scoring.AnalysisWindowDays
}
