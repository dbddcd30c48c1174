// ABOUTME: MCP server initialization and configuration for meetcal.
// ABOUTME: Sets up server with appointment tools for AI agent access.
package mcp

import (
	"context"
	"fmt"
	"sync"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/2389-research/meetcal/internal/storage"
)

// Server wraps the MCP server with appointment storage.
type Server struct {
	mcp *gomcp.Server
	log zerolog.Logger

	// mu serializes tool calls; the store is single-threaded.
	mu    sync.Mutex
	store storage.AppointmentStore
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets the logger for tool call diagnostics.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer creates an MCP server exposing the appointment store.
func NewServer(store storage.AppointmentStore, opts ...ServerOption) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("appointment store is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "meetcal",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		store: store,
		log:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerAppointmentTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info().Str("period", s.store.Period().String()).Msg("Serving appointments over stdio")
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
