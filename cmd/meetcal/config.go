// ABOUTME: Cobra command showing and saving meetcal configuration.
// ABOUTME: Prints the effective settings and optionally writes them to the config file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/meetcal/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or save configuration",
	Long: `Show the effective configuration. With --save, the config file's own
settings plus --data-dir are written back to it. Values that come from the
environment or .env are not saved.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// Flags
var (
	configSave bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configSave, "save", false, "Write settings to the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := *globalConfig
	if dataDirFlag != "" {
		cfg.Storage.DataDir = dataDirFlag
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	dataDir, err := cfg.GetDataDir()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s\n", path)
	fmt.Fprintf(out, "Data dir:    %s\n", dataDir)
	fmt.Fprintf(out, "Log level:   %s\n", orDefault(cfg.Log.Level, "warn"))
	fmt.Fprintf(out, "Log format:  %s\n", orDefault(cfg.Log.Format, "auto"))

	if !configSave {
		return nil
	}

	fileCfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDirFlag != "" {
		fileCfg.Storage.DataDir = dataDirFlag
	}
	if err := fileCfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "Config saved to %s\n", path)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
