// Package mcp exposes the transformation pipeline and the sandbox as Model
// Context Protocol tools and resources.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/sandbox"
)

const (
	ServerName    = "codemorph"
	ServerVersion = "0.1.0"
)

// NewServer registers every CodeMorph tool and resource. pipeline may be nil,
// in which case codemorph_transform reports that no model is configured.
func NewServer(pipeline *morph.Pipeline, runner *sandbox.Runner) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, pipeline, runner)
	registerResources(s)

	return s
}
