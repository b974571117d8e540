// Package mcp exposes the directive pipeline to MCP clients over
// stdio, so agent tooling can drive windows with the same commands
// the CLI accepts.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kwinctl/kwinctl/internal/config"
)

const (
	ServerName    = "kwinctl"
	ServerVersion = "0.1.0"
)

// Server is the MCP server wrapping the compiler and session.
type Server struct {
	mcpServer *mcpsdk.Server
	config    config.Config
	kde5      bool
	logger    *slog.Logger
}

// NewServer creates the server and registers its tools.
func NewServer(cfg config.Config, kde5 bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		kde5:   kde5,
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
		Name:        "run_command",
		Description: "Run a kwinctl directive chain against the running KWin instance. Takes the same tokens as the CLI, e.g. [\"search\", \"firefox\", \"windowactivate\"]. Returns query results and any script errors.",
	}, s.handleRunCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "render_script",
		Description: "Compile a directive chain and return the generated KWin script without executing it (the CLI's dry-run).",
	}, s.handleRenderScript)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_commands",
		Description: "List the directive names kwinctl understands, grouped by kind.",
	}, s.handleListCommands)
}
