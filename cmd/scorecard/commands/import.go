package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "CSV 입력 데이터 적재",
	Long: `종목, 일봉, 감성 점수를 CSV 파일에서 적재합니다.
같은 (ticker, date) 일봉은 덮어쓰고, 감성 점수는 추가됩니다.

CSV 헤더:
  --tickers    ticker,name,sector
  --prices     ticker,date,open,close,volume
  --sentiment  ticker,date,score[,summary]

Example:
  go run ./cmd/scorecard import --tickers tickers.csv --prices prices.csv
  go run ./cmd/scorecard import --sentiment sentiment.csv`,
	RunE: runImport,
}

var (
	importTickers   string
	importPrices    string
	importSentiment string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importTickers, "tickers", "", "종목 CSV 경로")
	importCmd.Flags().StringVar(&importPrices, "prices", "", "일봉 CSV 경로")
	importCmd.Flags().StringVar(&importSentiment, "sentiment", "", "감성 점수 CSV 경로")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importTickers == "" && importPrices == "" && importSentiment == "" {
		return fmt.Errorf("nothing to import: set --tickers, --prices or --sentiment")
	}

	fmt.Println("=== Scorecard Data Import ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// 종목 → 일봉 → 감성 순서 (외래 키)
	steps := []struct {
		label string
		path  string
		run   func(ctx context.Context, r io.Reader) (int, error)
	}{
		{"Tickers", importTickers, a.importer.ImportTickers},
		{"Price bars", importPrices, a.importer.ImportBars},
		{"Sentiment", importSentiment, a.importer.ImportSentiment},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		n, err := importFile(ctx, step.path, step.run)
		if err != nil {
			return fmt.Errorf("❌ %s import failed: %w", step.label, err)
		}
		fmt.Printf("   %s: %d rows\n", step.label, n)
	}

	fmt.Println("\n✅ Import completed")
	return nil
}

func importFile(ctx context.Context, path string, run func(ctx context.Context, r io.Reader) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return run(ctx, f)
}
