package mock

// Config describes a complete mock MCP server.
type Config struct {
	// Name is reported as the server name during the handshake
	Name string `yaml:"name"`
	// Tools are the tools advertised by tools/list
	Tools []ToolConfig `yaml:"tools"`
	// Prompts are the prompts advertised by prompts/list
	Prompts []PromptConfig `yaml:"prompts,omitempty"`
	// Resources are the static resources advertised by resources/list
	Resources []ResourceConfig `yaml:"resources,omitempty"`
	// ResourceTemplates are advertised by resources/templates/list
	ResourceTemplates []ResourceTemplateConfig `yaml:"resource_templates,omitempty"`
}

// ToolConfig defines configuration for a mock tool
type ToolConfig struct {
	// Name is the unique identifier for the tool
	Name string `yaml:"name"`
	// Description describes what the tool does
	Description string `yaml:"description"`
	// InputSchema is advertised verbatim as the tool's JSON Schema
	InputSchema map[string]interface{} `yaml:"input_schema"`
	// Responses defines possible responses for this tool. A tool without
	// responses echoes its arguments as JSON.
	Responses []ToolResponse `yaml:"responses"`
}

// ToolResponse defines a conditional response for a mock tool
type ToolResponse struct {
	// Condition defines parameter matching for this response (optional)
	// If empty, this response is used as a fallback
	Condition map[string]interface{} `yaml:"condition,omitempty"`
	// Response is the response data to return. Strings are rendered as Go
	// templates with the call arguments as data and sprig functions available.
	Response interface{} `yaml:"response,omitempty"`
	// Error makes the call fail with a protocol error carrying this message
	Error string `yaml:"error,omitempty"`
	// IsError returns Response as a tool result flagged as an error
	IsError bool `yaml:"is_error,omitempty"`
	// Delay simulates response latency (e.g., "2s", "500ms")
	Delay string `yaml:"delay,omitempty"`
}

// PromptConfig defines a mock prompt
type PromptConfig struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Arguments   []PromptArgument `yaml:"arguments,omitempty"`
	// Template renders the single user message of the prompt
	Template string `yaml:"template"`
}

// PromptArgument defines one argument of a mock prompt
type PromptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// ResourceConfig defines a static text resource
type ResourceConfig struct {
	URI         string `yaml:"uri"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	MIMEType    string `yaml:"mime_type,omitempty"`
	Text        string `yaml:"text"`
}

// ResourceTemplateConfig defines a templated resource. Text is rendered
// with the variables matched from the URI template.
type ResourceTemplateConfig struct {
	URITemplate string `yaml:"uri_template"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	MIMEType    string `yaml:"mime_type,omitempty"`
	Text        string `yaml:"text"`
}
