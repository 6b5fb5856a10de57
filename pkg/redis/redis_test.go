package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/pkg/config"
)

type snapshot struct {
	PE *float64 `json:"pe"`
}

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	limit := FundamentalsRateLimit(5)

	// Redis 비활성화 시 항상 허용
	allowed, remaining, err := limiter.Allow(context.Background(), limit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, limit.Limit, remaining)
	assert.NoError(t, limiter.Wait(context.Background(), limit))
}

func TestFundamentalsRateLimit(t *testing.T) {
	tests := []struct {
		name      string
		perSecond int
		wantLimit int
	}{
		{"positive", 5, 5},
		{"zero falls back to one", 0, 1},
		{"negative falls back to one", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FundamentalsRateLimit(tt.perSecond)
			assert.Equal(t, tt.wantLimit, cfg.Limit)
			assert.Equal(t, time.Second, cfg.Window)
			assert.Equal(t, "fundamentals", cfg.Key)
		})
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result snapshot
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", snapshot{}, TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "scorecard")

	pe := 12.5
	data, err := json.Marshal(snapshot{PE: &pe})
	require.NoError(t, err)
	mock.ExpectGet("scorecard:cache:fundamentals:AAPL").SetVal(string(data))

	var got snapshot
	found, err := cache.Get(context.Background(), FundamentalsKey("AAPL"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	require.NotNil(t, got.PE)
	assert.InDelta(t, 12.5, *got.PE, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "scorecard")

	mock.ExpectGet("scorecard:cache:fundamentals:MSFT").RedisNil()

	var got snapshot
	found, err := cache.Get(context.Background(), FundamentalsKey("MSFT"), &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SetAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "scorecard")

	pe := 20.0
	data, err := json.Marshal(snapshot{PE: &pe})
	require.NoError(t, err)

	mock.ExpectSet("scorecard:cache:fundamentals:AAPL", data, TTLDaily).SetVal("OK")
	mock.ExpectDel("scorecard:cache:fundamentals:AAPL").SetVal(1)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, FundamentalsKey("AAPL"), snapshot{PE: &pe}, TTLDaily))
	require.NoError(t, cache.Delete(ctx, FundamentalsKey("AAPL")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_InvalidateLatestScores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "scorecard")

	mock.ExpectDel("scorecard:cache:scores:latest:20").SetVal(1)

	require.NoError(t, cache.InvalidateLatestScores(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetCorruptValue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "scorecard")

	mock.ExpectGet("scorecard:cache:fundamentals:BAD").SetVal("{not json")

	var got snapshot
	found, err := cache.Get(context.Background(), FundamentalsKey("BAD"), &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "fundamentals:AAPL", FundamentalsKey("AAPL"))
	assert.Equal(t, "scores:latest:20", LatestScoresKey(20))
}
