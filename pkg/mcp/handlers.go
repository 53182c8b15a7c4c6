package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/document"
	"github.com/gnana997/twconfig/pkg/loader"
)

type contentResult struct {
	Relative bool     `json:"relative"`
	Resolved bool     `json:"resolved"`
	Patterns []string `json:"patterns"`
}

type validateResult struct {
	Valid    bool             `json:"valid"`
	Format   string           `json:"format"`
	Content  int              `json:"content,omitempty"`
	Tokens   []string         `json:"tokens,omitempty"`
	Problems []config.Problem `json:"problems,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// load reads the served document. Failures become tool errors so the
// client sees the reason.
func (s *Server) load() (*config.Config, *mcp.CallToolResult) {
	if s.configPath == "" {
		return nil, mcp.NewToolResultError("no configuration file is configured for this server")
	}
	cfg, err := s.loader.Load(s.configPath)
	if err != nil {
		s.logger.Warn("tool load failed", "path", s.configPath, "error", err)
		return nil, mcp.NewToolResultError(err.Error())
	}
	return cfg, nil
}

func (s *Server) handleGetConfig(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := document.ParseFormat(req.GetString("format", "json"))
	if format == document.FormatUnknown {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", req.GetString("format", ""))), nil
	}

	cfg, failed := s.load()
	if failed != nil {
		return failed, nil
	}

	var buf bytes.Buffer
	if err := config.Encode(&buf, cfg, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleGetContent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, failed := s.load()
	if failed != nil {
		return failed, nil
	}

	resolved := req.GetBool("resolved", false)
	patterns := cfg.Content
	if resolved {
		patterns = loader.ResolveContent(cfg, s.configPath)
	}
	return jsonResult(contentResult{
		Relative: cfg.ContentRelative,
		Resolved: resolved,
		Patterns: patterns,
	})
}

func (s *Server) handleGetFontSizes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, failed := s.load()
	if failed != nil {
		return failed, nil
	}

	if req.GetBool("resolved", false) {
		return jsonResult(cfg.ResolvedFontSizes())
	}

	tokens := make([]config.Token, 0, len(cfg.FontSizeNames()))
	for _, name := range cfg.FontSizeNames() {
		value, _ := cfg.FontSize(name)
		tokens = append(tokens, config.Token{Name: name, Value: value, Source: config.SourceExtend})
	}
	return jsonResult(tokens)
}

func (s *Server) handleValidateConfig(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	formatName, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := document.ParseFormat(formatName)
	if format == document.FormatUnknown {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", formatName)), nil
	}

	cfg, err := s.loader.LoadBytes([]byte(source), format)
	if err != nil {
		return jsonResult(validateResult{
			Valid:    false,
			Format:   format.String(),
			Problems: config.Problems(err),
		})
	}
	return jsonResult(validateResult{
		Valid:   true,
		Format:  format.String(),
		Content: len(cfg.Content),
		Tokens:  cfg.FontSizeNames(),
	})
}
