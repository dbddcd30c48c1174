// ABOUTME: Root Cobra command and global flags for meetcal CLI.
// ABOUTME: Sets up lifecycle hooks for config loading, logging, and store initialization.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/2389-research/meetcal/internal/config"
	"github.com/2389-research/meetcal/internal/logging"
	"github.com/2389-research/meetcal/internal/models"
	"github.com/2389-research/meetcal/internal/storage"
)

var globalConfig *config.Config
var globalLogger zerolog.Logger
var globalStore storage.AppointmentStore

// Flags
var (
	periodYear  int
	periodMonth int
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "meetcal",
	Short: "Monthly meeting calendar",
	Long: `Meeting calendar: book, search and list client appointments for a month.

Appointments are saved to one file per month. Each appointment has a
client name (unique, up to 20 characters), a day of the month and an
hour (1-24). Use --year and --month to work on a month other than the
current one.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg
		globalLogger = logging.New(cfg.Log, os.Stderr)

		dataDir := dataDirFlag
		if dataDir == "" {
			dataDir, err = cfg.GetDataDir()
			if err != nil {
				return fmt.Errorf("failed to resolve data dir: %w", err)
			}
		} else if dataDir, err = config.ExpandPath(dataDir); err != nil {
			return fmt.Errorf("failed to resolve data dir: %w", err)
		}

		period := resolvePeriod(periodYear, periodMonth, time.Now())
		store, err := storage.NewFileStore(dataDir, period, storage.WithLogger(globalLogger))
		if err != nil {
			return fmt.Errorf("failed to open appointment store: %w", err)
		}
		globalStore = store

		globalLogger.Debug().
			Str("data_dir", dataDir).
			Str("period", period.String()).
			Int("appointments", store.Count()).
			Msg("Store opened")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalStore != nil {
			_ = globalStore.Close()
			globalStore = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&periodYear, "year", 0, "Calendar year (default current year)")
	rootCmd.PersistentFlags().IntVar(&periodMonth, "month", 0, "Calendar month 1-12 (default current month)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding appointment files (overrides config)")
}

// resolvePeriod fills unset (zero) year or month from now. Out-of-range values are clamped.
func resolvePeriod(year, month int, now time.Time) models.Period {
	if year == 0 {
		year = now.Year()
	}
	m := now.Month()
	if month != 0 {
		m = time.Month(month)
	}
	return models.NewPeriod(year, m)
}
