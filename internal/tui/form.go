// ABOUTME: Interactive TUI form for adding an appointment to the current month.
// ABOUTME: 3-step bubbletea model collecting name, day, and hour, validating each before advancing.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/meetcal/internal/models"
)

// Step represents the current form step.
type Step int

const (
	StepName Step = iota
	StepDay
	StepHour
	StepSaving
	StepDone
	StepFailed
)

// Validator checks raw form input. storage.FileStore satisfies it.
type Validator interface {
	ValidateName(name string) bool
	ValidateDayText(day string) bool
	ValidateHourText(hour string) bool
	DaysInMonth() int
}

// SaveFn persists a validated appointment.
type SaveFn func(name string, day, hour int) error

// saveResultMsg carries the result of an async save attempt.
type saveResultMsg struct {
	err error
}

// FormModel is the bubbletea model for the add-appointment form.
type FormModel struct {
	step      Step
	period    models.Period
	inputs    [3]textinput.Model
	spinner   spinner.Model
	validator Validator
	saveFn    SaveFn
	inputErr  string
	saveErr   error
	quitting  bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewFormModel creates a form for period that validates with v and saves with save.
func NewFormModel(period models.Period, v Validator, save SaveFn) FormModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "Client name"
	nameInput.Width = 30
	nameInput.Focus()

	dayInput := textinput.New()
	dayInput.Placeholder = fmt.Sprintf("1-%d", v.DaysInMonth())
	dayInput.CharLimit = 2
	dayInput.Width = 10

	hourInput := textinput.New()
	hourInput.Placeholder = fmt.Sprintf("%d-%d", models.MinHour, models.MaxHour)
	hourInput.CharLimit = 2
	hourInput.Width = 10

	s := spinner.New()
	s.Spinner = spinner.Dot

	return FormModel{
		step:      StepName,
		period:    period,
		inputs:    [3]textinput.Model{nameInput, dayInput, hourInput},
		spinner:   s,
		validator: v,
		saveFn:    save,
	}
}

// Init implements tea.Model.
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			return m, tea.Quit
		}

		switch m.step {
		case StepName, StepDay, StepHour:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case saveResultMsg:
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.saveErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m FormModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)
		val := strings.TrimSpace(m.inputs[idx].Value())

		if reason := m.check(m.step, val); reason != "" {
			m.inputErr = reason
			return m, nil
		}
		m.inputErr = ""
		m.inputs[idx].SetValue(val)
		m.inputs[idx].Blur()

		switch m.step {
		case StepName:
			m.step = StepDay
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepDay:
			m.step = StepHour
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepHour:
			m.step = StepSaving
			return m, tea.Batch(m.startSave(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

// check returns why val is rejected at step, or "" when it is accepted.
func (m FormModel) check(step Step, val string) string {
	switch step {
	case StepName:
		if val == "" {
			return "name is required"
		}
		if !m.validator.ValidateName(val) {
			return fmt.Sprintf("name must be at most %d characters and not already booked", models.MaxNameLength)
		}
	case StepDay:
		if !m.validator.ValidateDayText(val) {
			return fmt.Sprintf("day must be a number from 1 to %d", m.validator.DaysInMonth())
		}
	case StepHour:
		if !m.validator.ValidateHourText(val) {
			return fmt.Sprintf("hour must be a number from %d to %d", models.MinHour, models.MaxHour)
		}
	}
	return ""
}

func (m FormModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepSaving
			m.saveErr = nil
			return m, tea.Batch(m.startSave(), m.spinner.Tick)
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FormModel) startSave() tea.Cmd {
	name, day, hour := m.Result()
	fn := m.saveFn
	return func() tea.Msg {
		return saveResultMsg{err: fn(name, day, hour)}
	}
}

// View implements tea.Model.
func (m FormModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   MEETCAL"))
	b.WriteString(titleStyle.Render(" - Add Appointment"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Appointments for %s\n\n", m.period))

	switch m.step {
	case StepName:
		b.WriteString(stepStyle.Render("Step 1 of 3: Client name"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepDay:
		b.WriteString(fmt.Sprintf("  Name: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: Day of month"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepHour:
		b.WriteString(fmt.Sprintf("  Name: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Day:  %s\n\n", m.inputs[1].Value()))
		b.WriteString(stepStyle.Render("Step 3 of 3: Hour (1-24)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepSaving:
		b.WriteString(m.summary())
		b.WriteString(m.spinner.View())
		b.WriteString(" Saving appointment...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(m.summary())
		b.WriteString(successStyle.Render("✓ Appointment saved!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.saveErr != nil {
			errMsg = m.saveErr.Error()
		}
		b.WriteString(m.summary())
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Save failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [q]uit"))
		b.WriteString("\n")
	}

	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.inputErr))
		b.WriteString("\n")
	}

	if m.step <= StepHour {
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("enter: next  esc: cancel"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m FormModel) summary() string {
	return fmt.Sprintf("  Name: %s\n  Day:  %s\n  Hour: %s\n\n",
		m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value())
}

// Result returns the entered values. Day and hour are 0 if not yet valid.
func (m FormModel) Result() (name string, day, hour int) {
	day, _ = strconv.Atoi(strings.TrimSpace(m.inputs[1].Value()))
	hour, _ = strconv.Atoi(strings.TrimSpace(m.inputs[2].Value()))
	return m.inputs[0].Value(), day, hour
}

// Saved returns true if the appointment was stored and the user did not cancel.
func (m FormModel) Saved() bool {
	return m.step == StepDone && !m.quitting
}
