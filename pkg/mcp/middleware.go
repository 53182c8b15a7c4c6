package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/twconfig/pkg/mcplog"
)

// loggingMiddleware records every tool call in the call log. Only installed
// when a call log is configured.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			configPath := s.configPath
			if req.Params.Name == toolValidateConfig {
				configPath = ""
			}
			_ = s.callLog.Write(mcplog.NewEntry(start, req, configPath, result, err))
			return result, err
		}
	}
}
