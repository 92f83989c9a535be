// Package mcp exposes the example catalog to AI agents as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that lists and runs gallery examples. Every
// run shares one session, so the agent signs in at most once per process.
type Server struct {
	catalog *catalog.Catalog
	runner  *runner.Runner
	session *platform.Session
	logger  *zap.Logger
	mcp     *server.MCPServer
}

// NewServer creates an MCP server. session carries any token the agent
// was started with and may be empty.
func NewServer(c *catalog.Catalog, r *runner.Runner, session *platform.Session, logger *zap.Logger) *Server {
	s := &Server{
		catalog: c,
		runner:  r,
		session: session,
		logger:  logger,
	}

	s.mcp = server.NewMCPServer(
		"puter-gallery",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(listExamplesTool, s.handleListExamples)
	s.mcp.AddTool(runExampleTool, s.handleRunExample)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
