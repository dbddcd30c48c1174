// ABOUTME: MCP tool implementations for appointment operations.
// ABOUTME: Registers add_appointment, delete_appointment, search_appointments, list_appointments.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/meetcal/internal/models"
)

func (s *Server) registerAppointmentTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "add_appointment",
		Description: "Book an appointment in the current month. Names are unique (case-sensitive) and at most 20 characters. Day must fall within the month; hour is 1-24.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Client or meeting name (1-20 characters)"},
				"day": {"type": "number", "description": "Day of the month"},
				"hour": {"type": "number", "description": "Hour of the day (1-24)"}
			},
			"required": ["name", "day", "hour"]
		}`),
	}, s.handleAddAppointment)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_appointment",
		Description: "Remove the appointment with exactly this name.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Exact appointment name"}
			},
			"required": ["name"]
		}`),
	}, s.handleDeleteAppointment)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "search_appointments",
		Description: "Find appointments whose name contains the search term.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"term": {"type": "string", "description": "Substring to look for in appointment names"},
				"case_sensitive": {"type": "boolean", "description": "Match case exactly (default false)"}
			},
			"required": ["term"]
		}`),
	}, s.handleSearchAppointments)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_appointments",
		Description: "List every appointment in the current month, ordered by day, hour, then name.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	}, s.handleListAppointments)
}

func (s *Server) handleAddAppointment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name string `json:"name"`
		Day  int    `json:"day"`
		Hour int    `json:"hour"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.ValidateName(args.Name) {
		return toolError("invalid name %q: must be 1-%d characters and not already booked", args.Name, models.MaxNameLength), nil
	}
	if !s.store.ValidateDay(args.Day) {
		return toolError("invalid day %d: must be between 1 and %d", args.Day, s.store.DaysInMonth()), nil
	}
	if !s.store.ValidateHour(args.Hour) {
		return toolError("invalid hour %d: must be between %d and %d", args.Hour, models.MinHour, models.MaxHour), nil
	}
	if !s.store.Add(args.Name, args.Day, args.Hour) {
		return toolError("failed to save appointment %q", args.Name), nil
	}

	s.log.Info().Str("name", args.Name).Int("day", args.Day).Int("hour", args.Hour).Msg("Appointment added")
	return textResult(fmt.Sprintf("Appointment added for %s: %s", s.store.Period(), args.Name)), nil
}

func (s *Server) handleDeleteAppointment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Name == "" {
		return toolError("name is required"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Delete(args.Name) {
		return toolError("no appointment named %q could be deleted", args.Name), nil
	}

	s.log.Info().Str("name", args.Name).Msg("Appointment deleted")
	return textResult(fmt.Sprintf("Appointment deleted: %s", args.Name)), nil
}

func (s *Server) handleSearchAppointments(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Term          string `json:"term"`
		CaseSensitive bool   `json:"case_sensitive"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Term == "" {
		return toolError("term is required"), nil
	}

	s.mu.Lock()
	s.store.Load()
	results := s.store.Search(args.Term, args.CaseSensitive)
	s.mu.Unlock()

	if len(results) == 0 {
		return textResult("No matching appointments found."), nil
	}
	return textResult(formatEntries(results)), nil
}

func (s *Server) handleListAppointments(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	s.mu.Lock()
	s.store.Load()
	period := s.store.Period()
	entries := s.store.Sorted()
	s.mu.Unlock()

	if len(entries) == 0 {
		return textResult(fmt.Sprintf("There are no appointments for %s.", period)), nil
	}
	return textResult(fmt.Sprintf("All appointments for %s\n%s", period, formatEntries(entries))), nil
}

// formatEntries renders one "- name: day D, HH:00" line per entry.
func formatEntries(entries []models.Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("- %s: day %d, %02d:00\n", e.Name(), e.Day(), e.Hour()))
	}
	return sb.String()
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
