package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"text/template"
	"time"

	"mcpnode/pkg/logging"

	"github.com/Masterminds/sprig/v3"
)

// ToolHandler handles mock tool calls with configurable responses
type ToolHandler struct {
	config ToolConfig
}

// NewToolHandler creates a new mock tool handler
func NewToolHandler(config ToolConfig) *ToolHandler {
	return &ToolHandler{config: config}
}

// HandleCall selects the first response whose condition matches args and
// renders it. The bool result reports whether the response is a tool-level error.
func (h *ToolHandler) HandleCall(ctx context.Context, args map[string]interface{}) (interface{}, bool, error) {
	logging.Debug("MockTool", "Tool '%s' called with args: %v", h.config.Name, args)

	mergedArgs := h.mergeWithDefaults(args)

	if len(h.config.Responses) == 0 {
		return mergedArgs, false, nil
	}

	var selectedResponse *ToolResponse
	for i := range h.config.Responses {
		if h.matchesCondition(h.config.Responses[i].Condition, mergedArgs) {
			selectedResponse = &h.config.Responses[i]
			break
		}
	}
	if selectedResponse == nil {
		selectedResponse = &h.config.Responses[0]
	}

	if selectedResponse.Delay != "" {
		if duration, err := time.ParseDuration(selectedResponse.Delay); err == nil {
			select {
			case <-time.After(duration):
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
	}

	if selectedResponse.Error != "" {
		msg, err := renderString(selectedResponse.Error, mergedArgs)
		if err != nil {
			return nil, false, fmt.Errorf("failed to render error message: %w", err)
		}
		return nil, false, fmt.Errorf("%s", msg)
	}

	rendered, err := renderValue(selectedResponse.Response, mergedArgs)
	if err != nil {
		return nil, false, fmt.Errorf("failed to render response: %w", err)
	}
	return rendered, selectedResponse.IsError, nil
}

// mergeWithDefaults merges provided args with default values from input schema
func (h *ToolHandler) mergeWithDefaults(args map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})

	if properties, ok := h.config.InputSchema["properties"].(map[string]interface{}); ok {
		for propName, propDef := range properties {
			if propDefMap, ok := propDef.(map[string]interface{}); ok {
				if defaultValue, hasDefault := propDefMap["default"]; hasDefault {
					merged[propName] = defaultValue
				}
			}
		}
	}

	for key, value := range args {
		merged[key] = value
	}

	return merged
}

// matchesCondition checks if the given args match the response condition
func (h *ToolHandler) matchesCondition(condition map[string]interface{}, args map[string]interface{}) bool {
	for key, expectedValue := range condition {
		actualValue, exists := args[key]
		if !exists || !valuesEqual(expectedValue, actualValue) {
			return false
		}
	}
	return true
}

// valuesEqual compares YAML configured values with JSON decoded arguments,
// so 1 and 1.0 or true and "true" are considered equal.
func valuesEqual(expected, actual interface{}) bool {
	if reflect.DeepEqual(expected, actual) {
		return true
	}
	return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
}

// renderValue renders every string inside v as a template.
func renderValue(v interface{}, data map[string]interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		return renderString(val, data)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			rendered, err := renderValue(item, data)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			rendered, err := renderValue(item, data)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}

func renderString(text string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("response").Funcs(sprig.TxtFuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// resultText converts a rendered response into tool result text.
// Structured data is returned as JSON.
func resultText(result interface{}) string {
	switch r := result.(type) {
	case nil:
		return ""
	case string:
		return r
	case map[string]interface{}, []interface{}:
		if jsonBytes, err := json.Marshal(r); err == nil {
			return string(jsonBytes)
		}
	}
	return fmt.Sprintf("%v", result)
}
