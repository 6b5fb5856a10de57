package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "Scorecard - 시그널 스코어링 및 구간별 성과 분석",
	Long: `Scorecard Unified CLI

종목별 기술/심리/재무 지표를 가중 점수로 산출하고,
점수 구간별 다음 거래일 수익률을 분석합니다.

Usage:
  go run ./cmd/scorecard [command]

Examples:
  go run ./cmd/scorecard migrate up
  go run ./cmd/scorecard score --date 2024-03-01
  go run ./cmd/scorecard analyze --window 90
  go run ./cmd/scorecard scheduler start
  go run ./cmd/scorecard api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "scoring YAML (default: SCORING_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
