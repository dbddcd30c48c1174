// ABOUTME: Cobra command for the interactive add-appointment form.
// ABOUTME: Launches a bubbletea TUI that validates each field before saving.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/meetcal/internal/tui"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Add an appointment interactively",
	Long:  "Interactive form that asks for the client name, day and hour, checking each one before moving on.",
	Args:  cobra.NoArgs,
	RunE:  runForm,
}

func init() {
	rootCmd.AddCommand(formCmd)
}

func runForm(cmd *cobra.Command, args []string) error {
	save := func(name string, day, hour int) error {
		if !globalStore.Add(name, day, hour) {
			return fmt.Errorf("could not save to %s", globalStore.Path())
		}
		return nil
	}

	model := tui.NewFormModel(globalStore.Period(), globalStore, save)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.FormModel)
	if !final.Saved() {
		fmt.Fprintln(cmd.OutOrStdout(), "No appointment added.")
		return nil
	}

	name, day, hour := final.Result()
	fmt.Fprintf(cmd.OutOrStdout(), "Appointment added for %s: %s on day %d at %02d:00\n",
		globalStore.Period(), name, day, hour)
	return nil
}
