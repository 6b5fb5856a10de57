package quality

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		total    int
		coverage map[string]float64
		passed   bool
		failures int
	}{
		{"full coverage", 10, map[string]float64{"price": 1, "volume": 1, "sentiment": 0.2}, true, 0},
		{"missing prices", 10, map[string]float64{"price": 0.5, "volume": 0.5, "sentiment": 1}, false, 2},
		{"no sentiment is fine", 10, map[string]float64{"price": 1, "volume": 1}, true, 0},
		{"empty universe", 0, map[string]float64{"price": 1, "volume": 1}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Evaluate(date, tt.total, tt.coverage, DefaultConfig())
			assert.Equal(t, tt.passed, snap.Passed)
			assert.Len(t, snap.Failures, tt.failures)
			assert.Equal(t, date, snap.Date)
		})
	}
}

func TestGate_Check(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	defer db.Close()

	gate := NewGate(db, DefaultConfig())
	snap, err := gate.Check(context.Background(), time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)

	for _, name := range []string{"price", "volume", "sentiment"} {
		cov, ok := snap.Coverage[name]
		require.True(t, ok, name)
		assert.GreaterOrEqual(t, cov, 0.0)
		assert.LessOrEqual(t, cov, 1.0)
	}
}
