package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 마이그레이션",
	Long: `내장된 SQL 마이그레이션을 DATABASE_URL에 적용합니다.

Subcommands:
  up       - 모든 마이그레이션 적용
  down     - 마지막 마이그레이션 되돌리기
  version  - 현재 스키마 버전

Example:
  go run ./cmd/scorecard migrate up
  go run ./cmd/scorecard migrate version`,
}

var (
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "모든 마이그레이션 적용",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migrations.Runner) error { return r.Up() })
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "마지막 마이그레이션 되돌리기",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migrations.Runner) error { return r.Down() })
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "현재 스키마 버전",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *migrations.Runner) error {
				version, dirty, err := r.Version()
				if err != nil {
					return err
				}
				fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)
				return nil
			})
		},
	}
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withRunner(fn func(r *migrations.Runner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("Database: %s\n", maskPassword(cfg.Database.URL))

	runner := migrations.NewRunner(cfg.Database.URL, logger.New(cfg))
	if err := fn(runner); err != nil {
		return fmt.Errorf("❌ Migration failed: %w", err)
	}

	fmt.Println("✅ Done")
	return nil
}
