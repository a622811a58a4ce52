package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewDesignLensMCPServer creates a new MCP server with all designlens tools
// and resources registered. The projectPath is the root directory of the
// project under review.
func NewDesignLensMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"designlens",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
