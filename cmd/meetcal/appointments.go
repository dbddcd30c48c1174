// ABOUTME: CLI commands for appointment operations.
// ABOUTME: Provides add, delete, search, and list subcommands for the current month.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/2389-research/meetcal/internal/models"
)

var addCmd = &cobra.Command{
	Use:   "add <name> <day> <hour>",
	Short: "Add an appointment",
	Long:  "Book an appointment for a client on a day of the month at an hour (1-24).",
	Args:  cobra.ExactArgs(3),
	RunE:  runAdd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an appointment",
	Long:  "Remove the appointment with exactly this name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search appointments",
	Long:  "Search appointments by substring of the client name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments",
	Long:  "List all appointments for the month ordered by day, hour, then name.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// Flags
var (
	searchCaseSensitive bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)

	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "Match case exactly")
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	dayText, hourText := strings.TrimSpace(args[1]), strings.TrimSpace(args[2])

	if !globalStore.ValidateName(name) {
		if globalStore.Index(name) != -1 {
			return fmt.Errorf("an appointment named %q already exists", name)
		}
		return fmt.Errorf("invalid name %q: must be 1-%d characters", name, models.MaxNameLength)
	}
	if !globalStore.ValidateDayText(dayText) {
		return fmt.Errorf("invalid day %q: must be a number from 1 to %d", dayText, globalStore.DaysInMonth())
	}
	if !globalStore.ValidateHourText(hourText) {
		return fmt.Errorf("invalid hour %q: must be a number from %d to %d", hourText, models.MinHour, models.MaxHour)
	}

	day, _ := strconv.Atoi(dayText)
	hour, _ := strconv.Atoi(hourText)
	if !globalStore.Add(name, day, hour) {
		return fmt.Errorf("failed to save appointment %q to %s", name, globalStore.Path())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Appointment added for %s: %s on day %d at %02d:00\n",
		globalStore.Period(), name, day, hour)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if globalStore.Index(name) == -1 {
		return fmt.Errorf("no appointment named %q for %s", name, globalStore.Period())
	}
	if !globalStore.Delete(name) {
		return fmt.Errorf("failed to save %s after deleting %q", globalStore.Path(), name)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Appointment deleted: %s\n", name)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	results := globalStore.Search(args[0], searchCaseSensitive)
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching appointments found.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(results))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	period := globalStore.Period()
	if globalStore.Count() == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "There are no appointments for %s\n", period)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "All appointments for %s\n\n", period)
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(globalStore.Sorted()))
	return nil
}

// renderTable formats entries as a bordered Name/Day/Hour table.
func renderTable(entries []models.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Day", "Hour")
	for _, e := range entries {
		t.Row(e.Row()...)
	}
	return t.String()
}
