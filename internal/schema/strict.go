package schema

import (
	"encoding/json"
	"fmt"

	"mcpnode/internal/api"

	"github.com/google/jsonschema-go/jsonschema"
)

// ArgumentValidator checks the arguments of one tool call.
type ArgumentValidator interface {
	Validate(args map[string]any) error
}

// Strict validates arguments against the server's full input schema,
// including nested properties that the typed validator leaves open.
type Strict struct {
	tool     string
	resolved *jsonschema.Resolved
}

// Compile resolves the raw input schema of a tool.
func Compile(tool string, inputSchema map[string]any) (*Strict, error) {
	if inputSchema == nil {
		inputSchema = map[string]any{"type": "object"}
	}
	data, err := json.Marshal(inputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema of tool %s: %w", tool, err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema of tool %s: %w", tool, err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema of tool %s: %w", tool, err)
	}
	return &Strict{tool: tool, resolved: resolved}, nil
}

// Validate implements ArgumentValidator.
func (s *Strict) Validate(args map[string]any) error {
	// The validator expects plain decoded JSON, not json.Number.
	data, err := json.Marshal(args)
	if err != nil {
		return &api.InvalidArgumentsError{Tool: s.tool, Reason: "arguments are not JSON encodable", Err: err}
	}
	var instance map[string]any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &api.InvalidArgumentsError{Tool: s.tool, Reason: "arguments are not a JSON object", Err: err}
	}
	if instance == nil {
		instance = map[string]any{}
	}
	if err := s.resolved.Validate(instance); err != nil {
		return &api.InvalidArgumentsError{Tool: s.tool, Reason: "arguments do not match the tool schema", Err: err}
	}
	return nil
}

// ForTool returns the strictest validator available for the schema: the
// compiled server schema when it resolves, the typed validator otherwise.
func ForTool(tool string, inputSchema map[string]any, logger api.Logger) ArgumentValidator {
	strict, err := Compile(tool, inputSchema)
	if err == nil {
		return strict
	}
	if logger != nil {
		logger.Debug("Falling back to typed validation for %s: %v", tool, err)
	}
	return Adapt(tool, inputSchema)
}
