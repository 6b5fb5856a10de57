package config_test

import (
	"fmt"

	"github.com/wonny/scorecard/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Scoring schedule: %s\n", cfg.Scoring.ScoreSchedule)
	fmt.Printf("Analysis window: %d days\n", cfg.Scoring.AnalysisWindowDays)
}
