package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mcpnode/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

// Server represents a mock MCP server for testing
type Server struct {
	name      string
	mcpServer *server.MCPServer

	mu    sync.RWMutex
	tools []string
}

// LoadConfig reads a mock server configuration file. When the file does not
// set a name, the file's base name is used.
func LoadConfig(configPath string) (Config, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read mock config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse mock config file %s: %w", configPath, err)
	}

	if cfg.Name == "" {
		name := filepath.Base(configPath)
		cfg.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return cfg, nil
}

// NewServerFromFile creates a new mock MCP server from a configuration file
func NewServerFromFile(configPath string) (*Server, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewServer(cfg)
}

// NewServer creates a mock MCP server advertising everything in cfg.
func NewServer(cfg Config) (*Server, error) {
	name := cfg.Name
	if name == "" {
		name = "mock"
	}

	mcpServer := server.NewMCPServer(
		fmt.Sprintf("mock-%s", name),
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{
		name:      name,
		mcpServer: mcpServer,
	}

	if err := s.setTools(cfg.Tools); err != nil {
		return nil, err
	}
	for _, p := range cfg.Prompts {
		s.addPrompt(p)
	}
	for _, r := range cfg.Resources {
		s.addResource(r)
	}
	for _, rt := range cfg.ResourceTemplates {
		s.addResourceTemplate(rt)
	}

	logging.Debug("MockServer", "Mock MCP server '%s' initialized with %d tools, %d prompts, %d resources",
		name, len(cfg.Tools), len(cfg.Prompts), len(cfg.Resources)+len(cfg.ResourceTemplates))

	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Name returns the configured server name.
func (s *Server) Name() string {
	return s.name
}

// ToolNames returns the names of the currently registered tools, sorted.
func (s *Server) ToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]string(nil), s.tools...)
	sort.Strings(out)
	return out
}

// ReloadTools replaces the registered tools with those in cfg. Connected
// clients are notified that the tool list changed.
func (s *Server) ReloadTools(cfg Config) error {
	return s.setTools(cfg.Tools)
}

func (s *Server) setTools(tools []ToolConfig) error {
	serverTools := make([]server.ServerTool, 0, len(tools))
	names := make([]string, 0, len(tools))
	for _, toolConfig := range tools {
		tool, err := buildTool(toolConfig)
		if err != nil {
			return err
		}
		serverTools = append(serverTools, server.ServerTool{
			Tool:    tool,
			Handler: createToolHandler(NewToolHandler(toolConfig)),
		})
		names = append(names, toolConfig.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tools) > 0 {
		s.mcpServer.DeleteTools(s.tools...)
	}
	if len(serverTools) > 0 {
		s.mcpServer.AddTools(serverTools...)
	}
	s.tools = names
	return nil
}

func buildTool(cfg ToolConfig) (mcp.Tool, error) {
	schema := cfg.InputSchema
	if schema == nil {
		schema = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("invalid input schema for tool %s: %w", cfg.Name, err)
	}
	return mcp.NewToolWithRawSchema(cfg.Name, cfg.Description, raw), nil
}

// createToolHandler adapts a ToolHandler to the protocol server.
func createToolHandler(handler *ToolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, isError, err := handler.HandleCall(ctx, request.GetArguments())
		if err != nil {
			return nil, err
		}
		if isError {
			return mcp.NewToolResultError(resultText(result)), nil
		}
		return mcp.NewToolResultText(resultText(result)), nil
	}
}

func (s *Server) addPrompt(cfg PromptConfig) {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(cfg.Description)}
	for _, arg := range cfg.Arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(arg.Description)}
		if arg.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(arg.Name, argOpts...))
	}

	s.mcpServer.AddPrompt(mcp.NewPrompt(cfg.Name, opts...), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		data := make(map[string]interface{}, len(request.Params.Arguments))
		for k, v := range request.Params.Arguments {
			data[k] = v
		}
		for _, arg := range cfg.Arguments {
			if _, ok := data[arg.Name]; arg.Required && !ok {
				return nil, fmt.Errorf("missing required argument %q", arg.Name)
			}
		}

		text, err := renderString(cfg.Template, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render prompt %s: %w", cfg.Name, err)
		}
		return mcp.NewGetPromptResult(cfg.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	})
}

func (s *Server) addResource(cfg ResourceConfig) {
	resource := mcp.NewResource(cfg.URI, cfg.Name,
		mcp.WithResourceDescription(cfg.Description),
		mcp.WithMIMEType(cfg.MIMEType),
	)
	s.mcpServer.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: cfg.MIMEType,
				Text:     cfg.Text,
			},
		}, nil
	})
}

func (s *Server) addResourceTemplate(cfg ResourceTemplateConfig) {
	tmpl := mcp.NewResourceTemplate(cfg.URITemplate, cfg.Name,
		mcp.WithTemplateDescription(cfg.Description),
		mcp.WithTemplateMIMEType(cfg.MIMEType),
	)
	s.mcpServer.AddResourceTemplate(tmpl, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data := map[string]interface{}{"uri": request.Params.URI}
		for k, v := range request.Params.Arguments {
			data[k] = flattenArgument(v)
		}
		text, err := renderString(cfg.Text, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render resource %s: %w", request.Params.URI, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: cfg.MIMEType,
				Text:     text,
			},
		}, nil
	})
}

// flattenArgument unwraps single element lists produced by URI template matching.
func flattenArgument(v interface{}) interface{} {
	switch val := v.(type) {
	case []string:
		if len(val) == 1 {
			return val[0]
		}
		return strings.Join(val, ",")
	case []interface{}:
		if len(val) == 1 {
			return val[0]
		}
	}
	return v
}

// ServeStdio serves the mock server over stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	logging.Debug("MockServer", "Starting mock MCP server '%s' on stdio transport", s.name)
	return server.ServeStdio(s.mcpServer)
}
