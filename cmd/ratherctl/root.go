package main

import (
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/wyr-platform/internal/config"
	"github.com/suPer8Hu/wyr-platform/internal/db"
	"github.com/suPer8Hu/wyr-platform/internal/game"
	"github.com/suPer8Hu/wyr-platform/internal/models"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ratherctl",
		Short:        "Admin tool for the would-you-rather service",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("dsn", "", "Database DSN (overrides DB_DSN env var)")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newThemesCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newStatsCmd())
	return root
}

// openDB connects with --dsn when given, else the configured DSN, and
// brings the schema up to date.
func openDB(cmd *cobra.Command, cfg config.Config) (*gorm.DB, error) {
	dsn := cfg.DBDSN
	if v, _ := cmd.Flags().GetString("dsn"); v != "" {
		dsn = v
	}
	gdb, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb, append(models.All(), game.Models()...)...); err != nil {
		return nil, err
	}
	return gdb, nil
}
