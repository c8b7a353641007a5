package cmd

import (
	"fmt"
	"os"

	"goldwatch/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "goldwatch",
	Short: "Gold price tracking service",
	Long: `Goldwatch tracks the gold price, item prices and population of game
servers as append-only snapshot series, fed by an external price provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level gives readable ISO8601 timestamps
		// for a CLI tool instead of the production epoch encoding.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
