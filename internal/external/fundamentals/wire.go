package fundamentals

import (
	"golang.org/x/time/rate"

	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/httputil"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
	"github.com/wonny/scorecard/pkg/redis"
)

// Build wires the HTTP client, rate limit and caches into a Provider.
// With Redis enabled the rate limit and L2 cache are shared across processes.
func Build(cfg *config.Config, rdb *redis.Client, rec *metrics.Recorder, log *logger.Logger) *Provider {
	httpClient := httputil.New(cfg, log)

	perSec := cfg.Fundamentals.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}

	var l2 *redis.Cache
	if rdb != nil && rdb.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, "scorecard"), redis.FundamentalsRateLimit(perSec))
		l2 = redis.NewCache(rdb, "scorecard")
	} else {
		httpClient.WithLocalLimiter(rate.NewLimiter(rate.Limit(perSec), perSec))
	}

	client := NewClient(httpClient, cfg.Fundamentals.BaseURL, log)
	return NewProvider(client, l2, DefaultProviderConfig(cfg.Fundamentals.CacheTTL), rec, log)
}
