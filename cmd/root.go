package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FintorAI/LG-RackandStack/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rackstack",
	Short: "Loan document rack-and-stack workflow",
	Long:  "Pulls borrower data and documents from ESFuse, pushes mapped Encompass fields back, creates a document submission, and reports per-stage results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
