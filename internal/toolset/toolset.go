package toolset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/capability"
	"mcpnode/internal/invoker"
	"mcpnode/internal/schema"

	"github.com/anthropics/anthropic-sdk-go"
)

// FunctionTool is one remote tool prepared for function calling.
type FunctionTool struct {
	Name        string
	Description string
	// Schema is the input schema exactly as the server advertised it
	Schema map[string]any
	// Typed is the adapted validator tree
	Typed *schema.Validator
	// Validator checks arguments before Call sends them
	Validator schema.ArgumentValidator
	// Param is the tool definition handed to the model
	Param anthropic.ToolUnionParam

	invoker *invoker.Invoker
	timeout time.Duration
}

// DefaultDescription is used for tools the server left undescribed.
func DefaultDescription(name string) string {
	return fmt.Sprintf("Execute the %s tool", name)
}

// Build lists the server's tools and prepares one FunctionTool each.
// At least one tool is required.
func Build(ctx context.Context, q capability.Querier, timeout time.Duration, logger api.Logger) ([]FunctionTool, error) {
	if logger == nil {
		logger = api.NopLogger{}
	}

	descriptors, err := capability.NewLister(q, logger).ListTools(ctx)
	if err != nil {
		return nil, err
	}

	inv := invoker.New(q, logger)
	tools := make([]FunctionTool, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, newFunctionTool(d, inv, timeout, logger))
	}
	return tools, nil
}

// Find returns the tool with the given name, if present.
func Find(tools []FunctionTool, name string) (FunctionTool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return FunctionTool{}, false
}

// Names returns the tool names in listing order.
func Names(tools []FunctionTool) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}

// Params returns the model-facing definitions in listing order.
func Params(tools []FunctionTool) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		params[i] = t.Param
	}
	return params
}

func newFunctionTool(d capability.ToolDescriptor, inv *invoker.Invoker, timeout time.Duration, logger api.Logger) FunctionTool {
	description := d.Description
	if description == "" {
		description = DefaultDescription(d.Name)
	}
	typed := schema.Adapt(d.Name, d.InputSchema)

	return FunctionTool{
		Name:        d.Name,
		Description: description,
		Schema:      d.InputSchema,
		Typed:       typed,
		Validator:   schema.ForTool(d.Name, d.InputSchema, logger),
		Param:       typed.ToolParam(description),
		invoker:     inv,
		timeout:     timeout,
	}
}

// Call normalizes and validates raw arguments, then invokes the tool.
func (t FunctionTool) Call(ctx context.Context, raw any) (map[string]any, error) {
	args, err := invoker.NormalizeArguments(raw)
	if err != nil {
		var invalid *api.InvalidArgumentsError
		if errors.As(err, &invalid) {
			invalid.Tool = t.Name
		}
		return nil, err
	}
	if err := t.Validator.Validate(args); err != nil {
		return nil, err
	}
	if t.invoker == nil {
		return nil, &api.ToolExecutionError{Tool: t.Name, Err: fmt.Errorf("tool is not bound to a session")}
	}
	return t.invoker.Call(ctx, t.Name, args, t.timeout)
}
