// Package mcp exposes the ring light to MCP clients over stdio. Every tool
// forwards to the running daemon through IPC.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/platform"
)

const (
	ServerName    = "ringlight"
	ServerVersion = "0.1.0"
)

// Client is the daemon API the tools call. *ipc.Client implements it.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Set(patch ipc.SetPayload) (*ipc.StatusData, error)
	ApplyPreset(name string) (*ipc.StatusData, error)
	SelectDisplay(id platform.DisplayID) (*ipc.StatusData, error)
}

// Server is the MCP server for ring-light control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by client.
func NewServer(client Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_ring_light",
		Description: "Report whether the ring light is on, its effective parameters, color, matching preset, selected display and open overlays.",
	}, s.handleGetRingLight)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_ring_light",
		Description: "Change one or more ring-light parameters. Omitted fields are unchanged. Out-of-range values are clamped, never rejected. The change is persisted.",
	}, s.handleSetRingLight)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_ring_light_preset",
		Description: "Set the color temperature from a named preset (warm, neutral, cool, or any preset in the daemon config).",
	}, s.handleApplyPreset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List selectable displays. The first entry, ID 0, selects every connected display.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_display",
		Description: "Show the ring light on one display, or on all displays. A display that is not connected is remembered and shows nothing until it reappears.",
	}, s.handleSelectDisplay)
}
