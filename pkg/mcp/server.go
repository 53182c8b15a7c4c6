// Package mcp serves a configuration document to MCP clients over stdio.
//
// Every tool is read-only: the document on disk is loaded through the
// shared loader on each call, so edits are picked up without a restart.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/twconfig/pkg/loader"
	"github.com/gnana997/twconfig/pkg/mcplog"
)

const serverName = "twconfig"

// Version is reported to clients during initialization.
var Version = "0.1.0-dev"

// Options configures a Server.
type Options struct {
	// ConfigPath is the document the get_* tools read.
	ConfigPath string

	// CallLog, when non-nil, receives one JSONL entry per tool call.
	CallLog *mcplog.Logger

	Logger *slog.Logger
}

// Server exposes config query and validation tools.
type Server struct {
	mcpServer  *server.MCPServer
	loader     *loader.Loader
	configPath string
	callLog    *mcplog.Logger
	logger     *slog.Logger
}

// NewServer creates a server backed by l.
func NewServer(l *loader.Loader, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		loader:     l,
		configPath: opts.ConfigPath,
		callLog:    opts.CallLog,
		logger:     opts.Logger,
	}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		serverOpts = append(serverOpts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer(serverName, Version, serverOpts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: getConfigTool(), Handler: s.handleGetConfig},
		server.ServerTool{Tool: getContentTool(), Handler: s.handleGetContent},
		server.ServerTool{Tool: getFontSizesTool(), Handler: s.handleGetFontSizes},
		server.ServerTool{Tool: validateConfigTool(), Handler: s.handleValidateConfig},
	)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server starting", "config", s.configPath, "call_log", s.callLog.Path())
	return server.ServeStdio(s.mcpServer)
}
