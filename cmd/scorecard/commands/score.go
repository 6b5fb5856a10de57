package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/contracts"
)

const dateLayout = "2006-01-02"

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "일간 점수 산출",
	Long: `전체 종목의 점수를 산출하고 daily_scores에 저장합니다.

이 명령어는:
- 종목별 지표 계산 및 가중 점수 산출
- 다음 거래일 수익률 부착 (가능한 경우)
- 한 트랜잭션으로 upsert

Ctrl+C를 누르면 현재 종목까지 처리한 뒤 지금까지의 결과를 저장합니다.

Subcommands:
  one       - 단일 종목 점수 산출 및 저장
  backfill  - 비어 있는 다음 거래일 수익률 채우기

Example:
  go run ./cmd/scorecard score
  go run ./cmd/scorecard score --date 2024-03-01
  go run ./cmd/scorecard score one AAPL --date 2024-03-01
  go run ./cmd/scorecard score backfill --since 2024-02-20`,
	RunE: runScore,
}

var (
	scoreOneCmd = &cobra.Command{
		Use:   "one [ticker]",
		Short: "단일 종목 점수 산출",
		Args:  cobra.ExactArgs(1),
		RunE:  runScoreOne,
	}

	scoreBackfillCmd = &cobra.Command{
		Use:   "backfill",
		Short: "다음 거래일 수익률 백필",
		RunE:  runBackfill,
	}
)

var (
	scoreDate     string
	backfillSince string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreOneCmd)
	scoreCmd.AddCommand(scoreBackfillCmd)

	scoreCmd.PersistentFlags().StringVar(&scoreDate, "date", "", "대상 날짜 YYYY-MM-DD (default: 어제)")
	scoreBackfillCmd.Flags().StringVar(&backfillSince, "since", "", "이 날짜 이후 점수 대상 YYYY-MM-DD (default: BACKFILL_LOOKBACK_DAYS 전)")
}

// parseDateFlag parses value, falling back to fallback when empty
func parseDateFlag(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return contracts.NormalizeDate(fallback), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, contracts.ErrInvalidDate)
	}
	return t, nil
}

func yesterday() time.Time {
	return time.Now().AddDate(0, 0, -1)
}

// interruptContext handles Ctrl+C / SIGTERM. With onStop the first signal only
// asks for a graceful stop and a second one cancels; without it the first cancels.
func interruptContext(onStop func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(quit)
		if onStop != nil {
			select {
			case <-quit:
				fmt.Println("\nStop requested, finishing current instrument... (again to abort)")
				onStop()
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func runScore(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scorecard Daily Scoring ===")

	target, err := parseDateFlag(scoreDate, yesterday())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := interruptContext(a.driver.Stop)
	defer cancel()

	fmt.Printf("Target date: %s\n\n", target.Format(dateLayout))

	run, err := a.driver.RunScoring(ctx, target)
	if err != nil {
		return fmt.Errorf("❌ Scoring failed: %w", err)
	}

	printScoringRun(run)
	return nil
}

func printScoringRun(run *contracts.ScoringRun) {
	fmt.Println("📊 Scoring Results:")
	fmt.Printf("   Run ID: %s\n", run.RunID)
	fmt.Printf("   Tickers: %d\n", run.Tickers)
	fmt.Printf("   Written: %d\n", run.Written)
	fmt.Printf("   Errors: %d\n", len(run.Errors))
	fmt.Printf("   Duration: %v\n", run.Duration.Round(time.Millisecond))

	for _, e := range run.Errors {
		fmt.Printf("   ❌ %s\n", e)
	}

	if run.Stopped {
		fmt.Println("\n⚠️  Run stopped early, partial results saved")
		return
	}
	fmt.Println("\n✅ Scoring completed")
}

func runScoreOne(cmd *cobra.Command, args []string) error {
	ticker := strings.ToUpper(args[0])

	target, err := parseDateFlag(scoreDate, yesterday())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rec, err := a.driver.ScoreOne(ctx, ticker, target)
	if err != nil {
		return fmt.Errorf("❌ Score %s: %w", ticker, err)
	}

	printScoreRecord(rec)
	return nil
}

func printScoreRecord(rec *contracts.ScoreRecord) {
	fmt.Printf("=== %s @ %s ===\n", rec.Ticker, rec.Date.Format(dateLayout))
	fmt.Printf("Score: %.2f\n\n", rec.Score)

	fmt.Println("📊 Breakdown:")
	for _, name := range contracts.AllFactors {
		fc, ok := rec.Breakdown[name]
		if !ok {
			continue
		}
		fmt.Printf("   %-16s %+8.2f  (%s)\n", name, fc.WeightedPoints, describe(fc))
	}

	fmt.Println()
	if rec.NextDayReturnPct != nil {
		fmt.Printf("Next day return: %+.2f%%\n", *rec.NextDayReturnPct)
	} else {
		fmt.Println("Next day return: pending")
	}
}

func describe(fc contracts.FactorResult) string {
	if fc.Status != "" {
		return fc.Status
	}
	if fc.Value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *fc.Value)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scorecard Forward Return Backfill ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	since, err := parseDateFlag(backfillSince, time.Now().AddDate(0, 0, -a.cfg.Scoring.BackfillLookback))
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext(nil)
	defer cancel()

	res, err := a.backfiller.Run(ctx, since)
	if err != nil {
		return fmt.Errorf("❌ Backfill failed: %w", err)
	}

	fmt.Printf("Since: %s\n", since.Format(dateLayout))
	fmt.Printf("   Pending: %d\n", res.Pending)
	fmt.Printf("   Updated: %d\n", res.Updated)
	fmt.Printf("   Failed: %d\n", res.Failed)
	fmt.Println("\n✅ Backfill completed")
	return nil
}
