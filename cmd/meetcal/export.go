// ABOUTME: Cobra command exporting the month's appointments.
// ABOUTME: Writes iCalendar or CSV to stdout or atomically to a file.
package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/2389-research/meetcal/internal/config"
	"github.com/2389-research/meetcal/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export appointments",
	Long:  "Export the month's appointments as an iCalendar (.ics) or CSV file.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

// Flags
var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "ics", "Output format: ics or csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	entries := globalStore.Sorted()

	var buf bytes.Buffer
	switch strings.ToLower(exportFormat) {
	case "ics":
		if err := export.WriteICS(&buf, globalStore.Period(), entries, time.Now()); err != nil {
			return fmt.Errorf("failed to write calendar: %w", err)
		}
	case "csv":
		if err := export.WriteCSV(&buf, entries); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q: use ics or csv", exportFormat)
	}

	if exportOutput == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	path, err := config.ExpandPath(exportOutput)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d appointments to %s\n", len(entries), path)
	return nil
}
