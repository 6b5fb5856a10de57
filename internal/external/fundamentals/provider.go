package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
	"github.com/wonny/scorecard/pkg/redis"
)

// Fetcher loads one snapshot from the remote source
type Fetcher interface {
	FetchSnapshot(ctx context.Context, ticker string) (*contracts.FundamentalSnapshot, error)
}

// Provider implements contracts.FundamentalsProvider:
// in-process cache → redis cache → circuit breaker → remote source.
type Provider struct {
	fetcher Fetcher
	l1      *gocache.Cache
	l2      *redis.Cache
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	metrics *metrics.Recorder
	logger  *logger.Logger
}

// ProviderConfig configures caching and tripping
type ProviderConfig struct {
	CacheTTL         time.Duration
	FailureThreshold uint32        // consecutive failures before opening
	OpenTimeout      time.Duration // open → half-open
}

// DefaultProviderConfig returns the production settings
func DefaultProviderConfig(ttl time.Duration) ProviderConfig {
	return ProviderConfig{
		CacheTTL:         ttl,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}
}

// NewProvider creates a fundamentals provider. l2 and rec may be nil.
func NewProvider(fetcher Fetcher, l2 *redis.Cache, cfg ProviderConfig, rec *metrics.Recorder, log *logger.Logger) *Provider {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 12 * time.Hour
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	plog := log.WithComponent("fundamentals.provider")

	settings := gobreaker.Settings{
		Name:     "fundamentals",
		Interval: 5 * time.Minute,
		Timeout:  cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// 종목 없음/테이블 없음은 원천 장애가 아님
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoSnapshot)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			plog.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &Provider{
		fetcher: fetcher,
		l1:      gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		l2:      l2,
		breaker: gobreaker.NewCircuitBreaker(settings),
		ttl:     cfg.CacheTTL,
		metrics: rec,
		logger:  plog,
	}
}

// GetFundamentals returns the snapshot for ticker, or nil when the source has none
func (p *Provider) GetFundamentals(ctx context.Context, ticker string) (*contracts.FundamentalSnapshot, error) {
	key := redis.FundamentalsKey(ticker)

	if v, ok := p.l1.Get(key); ok {
		p.metrics.RecordFundamentals("l1", "hit")
		snap := v.(contracts.FundamentalSnapshot)
		return &snap, nil
	}

	if p.l2 != nil {
		var snap contracts.FundamentalSnapshot
		found, err := p.l2.Get(ctx, key, &snap)
		if err != nil {
			p.logger.WithError(err).WithField("ticker", ticker).Warn("Redis cache read failed")
		}
		if found {
			p.metrics.RecordFundamentals("l2", "hit")
			p.l1.Set(key, snap, gocache.DefaultExpiration)
			return &snap, nil
		}
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetcher.FetchSnapshot(ctx, ticker)
	})
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoSnapshot):
		p.metrics.RecordFundamentals("remote", "not_found")
		return nil, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		p.metrics.RecordFundamentals("remote", "breaker_open")
		return nil, fmt.Errorf("fundamentals source unavailable: %w", err)
	case err != nil:
		p.metrics.RecordFundamentals("remote", "error")
		return nil, err
	}

	snap := result.(*contracts.FundamentalSnapshot)
	p.metrics.RecordFundamentals("remote", "ok")
	p.store(ctx, key, *snap)
	return snap, nil
}

// State reports the breaker state (health endpoint)
func (p *Provider) State() string {
	return p.breaker.State().String()
}

func (p *Provider) store(ctx context.Context, key string, snap contracts.FundamentalSnapshot) {
	p.l1.Set(key, snap, gocache.DefaultExpiration)
	if p.l2 == nil {
		return
	}
	if err := p.l2.Set(ctx, key, snap, p.ttl); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Redis cache write failed")
	}
}
