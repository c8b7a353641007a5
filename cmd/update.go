package cmd

import (
	"fmt"

	"goldwatch/core/config"
	"goldwatch/core/database"
	"goldwatch/core/logger"
	"goldwatch/feature/goldprice"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run a single gold price feed update",
	Long:  `Fetches the gold price feed once, matches it against the server catalog and appends one snapshot per server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		updater := buildUpdater(cfg, db, logg)
		if err := updater.RunOnce(cmd.Context()); err != nil {
			return fmt.Errorf("gold price update failed: %w", err)
		}
		return nil
	},
}

// buildUpdater wires an updater regardless of the feed enabled flag, so the
// one-shot command works even when the background loop is off.
func buildUpdater(cfg *config.Config, db *gorm.DB, logg *zap.Logger) *goldprice.Updater {
	feedEnabled := *cfg
	feedEnabled.Feed.Enabled = true
	return buildApplication(&feedEnabled, db, logg).updater
}

func init() {
	RootCmd.AddCommand(updateCmd)
}
