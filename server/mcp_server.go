// Package server exposes the tool registry over the Model Context Protocol.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	coreruntime "github.com/initializ/gemini-bridge/runtime"
	"github.com/initializ/gemini-bridge/tools"
	"github.com/initializ/gemini-bridge/validate"
)

// DefaultName is the server name reported during MCP initialization.
const DefaultName = "gemini-bridge"

// Config configures the MCP server.
type Config struct {
	Name     string
	Version  string
	Registry *tools.Registry
	Logger   coreruntime.Logger
}

// Server bridges a tools.Registry onto an MCP server. Every registered tool
// becomes an MCP tool; tools with a prompt descriptor also become prompts.
type Server struct {
	mcp       *mcpserver.MCPServer
	registry  *tools.Registry
	validator *validate.ArgsValidator
	logger    coreruntime.Logger
}

// New creates a Server and registers every tool in cfg.Registry.
func New(cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = coreruntime.NopLogger{}
	}
	if cfg.Registry == nil {
		cfg.Registry = tools.NewRegistry()
	}

	s := &Server{
		registry:  cfg.Registry,
		validator: validate.NewArgsValidator(),
		logger:    cfg.Logger,
	}
	s.mcp = mcpserver.NewMCPServer(cfg.Name, cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)

	for _, d := range cfg.Registry.Descriptors() {
		s.mcp.AddTool(toMCPTool(d), s.toolHandler(d))
		if d.Prompt != nil {
			s.mcp.AddPrompt(toMCPPrompt(d), s.promptHandler(d))
		}
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// HandleMessage processes a single raw JSON-RPC message without a transport.
func (s *Server) HandleMessage(ctx context.Context, msg json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, msg)
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until in is closed
// or ctx is cancelled. Nothing but protocol messages is written to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(&logWriter{logger: s.logger}, "", 0))

	s.logger.Info("serving MCP over stdio", map[string]any{"tools": s.registry.List()})
	err := stdio.Listen(ctx, in, out)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Server) toolHandler(d tools.Descriptor) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding arguments: %v", err)), nil
		}

		violations, err := s.validator.Validate(d.Name, d.InputSchema, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(violations) > 0 {
			s.logger.Warn("rejected tool call", map[string]any{"tool": d.Name, "violations": violations})
			return mcp.NewToolResultError("invalid arguments: " + strings.Join(violations, "; ")), nil
		}

		ctx = tools.WithProgress(ctx, s.progressNotifier(ctx, req))

		start := time.Now()
		out, err := s.registry.Execute(ctx, d.Name, args)
		fields := map[string]any{
			"tool":        d.Name,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
			s.logger.Error("tool call failed", fields)
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.logger.Info("tool call completed", fields)
		return mcp.NewToolResultText(out), nil
	}
}

// progressNotifier forwards progress messages as notifications/progress when
// the caller supplied a progress token.
func (s *Server) progressNotifier(ctx context.Context, req mcp.CallToolRequest) tools.ProgressFunc {
	if req.Params.Meta == nil || req.Params.Meta.ProgressToken == nil {
		return nil
	}
	token := req.Params.Meta.ProgressToken

	var count atomic.Int64
	return func(msg string) {
		n := count.Add(1)
		err := s.mcp.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      n,
			"message":       msg,
		})
		if err != nil {
			s.logger.Debug("dropping progress notification", map[string]any{"error": err.Error()})
		}
	}
}

func (s *Server) promptHandler(d tools.Descriptor) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := renderPrompt(d.Name, req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return mcp.NewGetPromptResult(d.Prompt.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}

func renderPrompt(tool string, args map[string]string) (string, error) {
	if len(args) == 0 {
		return fmt.Sprintf("Use the %s tool.", tool), nil
	}
	data, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding prompt arguments: %w", err)
	}
	return fmt.Sprintf("Use the %s tool with these arguments:\n%s", tool, data), nil
}

func toMCPTool(d tools.Descriptor) mcp.Tool {
	tool := mcp.NewToolWithRawSchema(d.Name, d.Description, d.InputSchema)
	tool.Annotations = mcp.ToolAnnotation{
		ReadOnlyHint:    boolPtr(d.Annotations.ReadOnly),
		DestructiveHint: boolPtr(d.Annotations.Destructive),
		OpenWorldHint:   boolPtr(d.Annotations.OpenWorld),
	}
	return tool
}

type schemaProperty struct {
	Description string `json:"description"`
}

type objectSchema struct {
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

func toMCPPrompt(d tools.Descriptor) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(d.Prompt.Description)}

	var schema objectSchema
	if err := json.Unmarshal(d.InputSchema, &schema); err == nil {
		required := make(map[string]bool, len(schema.Required))
		for _, name := range schema.Required {
			required[name] = true
		}
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(schema.Properties[name].Description)}
			if required[name] {
				argOpts = append(argOpts, mcp.RequiredArgument())
			}
			opts = append(opts, mcp.WithArgument(name, argOpts...))
		}
	}
	return mcp.NewPrompt(d.Name, opts...)
}

func boolPtr(b bool) *bool { return &b }

// logWriter adapts Logger to the *log.Logger the stdio transport expects.
type logWriter struct {
	logger coreruntime.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.logger.Error(strings.TrimSpace(string(p)), map[string]any{"component": "stdio"})
	return len(p), nil
}
