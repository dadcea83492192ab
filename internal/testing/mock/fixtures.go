package mock

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
)

// HelperEnv selects a fixture when a test binary is re-executed as a stdio
// MCP server. Its value is the fixture name ("echo" or "demo"), or
// CrashFixture.
const HelperEnv = "MCPNODE_MOCK_SERVER"

// CrashFixture is only served by RunHelperIfRequested: the echo fixture plus
// a "crash" tool that terminates the server process without answering.
const CrashFixture = "crash"

// EchoSchema is the input schema of the echo fixture tool.
func EchoSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"msg": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"msg"},
	}
}

// NestedSchema has an object nested three levels deep, a string array and
// a required list. Listing it must return it unchanged.
func NestedSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Profile name",
			},
			"settings": map[string]interface{}{
				"type":        "object",
				"description": "Nested settings",
				"properties": map[string]interface{}{
					"display": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"darkMode": map[string]interface{}{
								"type":        "boolean",
								"description": "Enable dark mode",
							},
						},
						"required": []interface{}{"darkMode"},
					},
				},
			},
			"tags": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []interface{}{"name", "settings"},
	}
}

// EchoConfig is a server with exactly one tool, echo, which returns its msg argument.
func EchoConfig() Config {
	return Config{
		Name: "echo",
		Tools: []ToolConfig{
			{
				Name:        "echo",
				Description: "Echo a message",
				InputSchema: EchoSchema(),
				Responses:   []ToolResponse{{Response: "{{ .msg }}"}},
			},
		},
	}
}

// DemoConfig is a server exercising every capability.
func DemoConfig() Config {
	cfg := EchoConfig()
	cfg.Name = "demo"
	cfg.Tools = append(cfg.Tools,
		ToolConfig{
			Name:        "configure",
			Description: "Store a profile",
			InputSchema: NestedSchema(),
			Responses:   []ToolResponse{{Response: "stored {{ .name }}"}},
		},
		ToolConfig{
			Name:        "fail",
			InputSchema: map[string]interface{}{"type": "object"},
			Responses:   []ToolResponse{{Error: "tool exploded"}},
		},
	)
	cfg.Prompts = []PromptConfig{
		{
			Name:        "greet",
			Description: "Greet someone",
			Arguments:   []PromptArgument{{Name: "who", Description: "Who to greet", Required: true}},
			Template:    "Say hello to {{ .who }}",
		},
	}
	cfg.Resources = []ResourceConfig{
		{URI: "mem://readme", Name: "readme", Description: "Read me", MIMEType: "text/plain", Text: "hello from the mock"},
	}
	cfg.ResourceTemplates = []ResourceTemplateConfig{
		{URITemplate: "mem://items/{id}", Name: "item", MIMEType: "text/plain", Text: "item {{ .id }}"},
	}
	return cfg
}

// Fixture returns the named fixture configuration.
func Fixture(name string) (Config, error) {
	switch name {
	case "echo":
		return EchoConfig(), nil
	case "demo", "":
		return DemoConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown mock fixture %q", name)
	}
}

// RunHelperIfRequested serves the fixture named by HelperEnv over stdio and
// exits when it is set. Call it first thing in TestMain.
func RunHelperIfRequested() {
	name, ok := os.LookupEnv(HelperEnv)
	if !ok {
		return
	}
	fixture := name
	if name == CrashFixture {
		fixture = "echo"
	}
	cfg, err := Fixture(fixture)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	s, err := NewServer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if name == CrashFixture {
		s.MCPServer().AddTool(mcp.NewTool("crash", mcp.WithDescription("Exit without answering")),
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				os.Exit(3)
				return nil, nil
			})
	}
	if err := s.ServeStdio(); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}
