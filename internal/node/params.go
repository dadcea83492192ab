package node

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Parameter names understood by Execute.
const (
	ParamOperation       = "operation"
	ParamConnectionType  = "connectionType"
	ParamURIOverride     = "uriOverride"
	ParamHeaders         = "headers"
	ParamResourceURI     = "resourceUri"
	ParamToolName        = "toolName"
	ParamToolParameters  = "toolParameters"
	ParamPromptName      = "promptName"
	ParamPromptArguments = "promptArguments"
	ParamFunctionCalling = "functionCalling"
)

// Parameters is a ParameterSource backed by node-level values with
// optional per-item overrides.
type Parameters struct {
	Node  map[string]any
	Items []map[string]any
}

// Get returns the item override for name, then the node value, then fallback.
func (p Parameters) Get(name string, itemIndex int, fallback any) any {
	if itemIndex >= 0 && itemIndex < len(p.Items) {
		if v, ok := p.Items[itemIndex][name]; ok {
			return v
		}
	}
	if v, ok := p.Node[name]; ok {
		return v
	}
	return fallback
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

// promptArguments converts a JSON object (or its text) to the string map
// prompts/get requires. Non-string values are JSON encoded.
func promptArguments(v any) (map[string]string, error) {
	var obj map[string]any
	switch a := v.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return a, nil
	case map[string]any:
		obj = a
	case string:
		if strings.TrimSpace(a) == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(a), &obj); err != nil {
			return nil, fmt.Errorf("prompt arguments must be a JSON object: %w", err)
		}
	default:
		return nil, fmt.Errorf("prompt arguments must be a JSON object, got %T", v)
	}

	out := make(map[string]string, len(obj))
	for k, val := range obj {
		if s, ok := val.(string); ok {
			out[k] = s
			continue
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("prompt argument %s: %w", k, err)
		}
		out[k] = string(data)
	}
	return out, nil
}
