package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/yeehome/pkg/device"
)

// Server wraps the MCP server with yeehome's gateway control functionality
type Server struct {
	mcpServer  *server.MCPServer
	controller device.Controller
}

// NewServer creates a new MCP server for gateway control
func NewServer(controller device.Controller) *Server {
	s := &Server{
		controller: controller,
	}

	s.mcpServer = server.NewMCPServer(
		"yeehome",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
