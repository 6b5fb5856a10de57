package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "점수 구간별 성과 분석",
	Long: `최근 N일 점수를 5개 구간으로 나눠 다음 거래일 평균 수익률을 계산합니다.

구간:
  Score < -2
  -2 <= Score < 0
  0 <= Score < 2
  2 <= Score < 4
  Score >= 4

같은 실행일의 기존 결과는 전부 교체됩니다.

Example:
  go run ./cmd/scorecard analyze
  go run ./cmd/scorecard analyze --window 30`,
	RunE: runAnalyze,
}

var analyzeWindow int

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeWindow, "window", 0, "분석 기간 (일, default: 전략 파일)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scorecard Performance Analysis ===")

	if cmd.Flags().Changed("window") && analyzeWindow <= 0 {
		return fmt.Errorf("--window must be positive: %w", contracts.ErrInvalidWindow)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	window := analyzeWindow
	if window == 0 {
		window = a.defaultWindow()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	run, err := a.analyzer.Analyze(ctx, window)
	if err != nil {
		return fmt.Errorf("❌ Analysis failed: %w", err)
	}

	printAnalysis(run)
	return nil
}

func printAnalysis(run *contracts.AnalysisRun) {
	fmt.Printf("Run date: %s (window %d days)\n", run.RunDate.Format(dateLayout), run.WindowDays)
	fmt.Printf("Samples: %d (dropped %d)\n\n", run.Samples, run.Dropped)

	fmt.Println("📊 Buckets:")
	for _, b := range run.Buckets {
		mean := "null"
		if b.MeanForwardReturn != nil {
			mean = fmt.Sprintf("%+.4f%%", *b.MeanForwardReturn)
		}
		fmt.Printf("   %-18s %12s  (n=%d)\n", b.Label, mean, b.Count)
	}

	fmt.Println("\n✅ Analysis saved")
}
