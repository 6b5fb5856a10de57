package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/api"
	"github.com/wonny/scorecard/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                 - Health check
  GET  /metrics                - Prometheus metrics (METRICS_ENABLED)
  GET  /api/scores/latest      - 최신 점수 (점수 내림차순)
  GET  /api/scores/{ticker}    - 종목 점수 이력
  POST /api/scoring/run        - 점수 산출 실행
  GET  /api/analysis/latest    - 최신 구간 분석
  POST /api/analysis/run       - 구간 분석 실행

Example:
  go run ./cmd/scorecard api
  go run ./cmd/scorecard api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scorecard API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	scoreHandler := handlers.NewScoreHandler(a.driver, a.scores, a.cache(), a.log)
	analysisHandler := handlers.NewAnalysisHandler(a.analyzer, a.buckets, a.defaultWindow(), a.log)

	var metricsHandler http.Handler
	if a.cfg.MetricsEnabled {
		metricsHandler = a.metrics.Handler()
	}

	router := api.NewRouter(scoreHandler, analysisHandler, metricsHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
