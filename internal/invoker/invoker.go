package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/capability"
)

const methodCallTool = "tools/call"

const notAnObject = "Tool parameters must be a JSON object"

// Invoker calls tools on an open session.
type Invoker struct {
	querier capability.Querier
	lister  *capability.Lister
	logger  api.Logger
}

// New creates an Invoker over q. A nil logger discards diagnostics.
func New(q capability.Querier, logger api.Logger) *Invoker {
	if logger == nil {
		logger = api.NopLogger{}
	}
	return &Invoker{
		querier: q,
		lister:  capability.NewLister(q, logger),
		logger:  logger,
	}
}

// NormalizeArguments turns user supplied tool arguments into a JSON object.
//
// nil, a nil map and blank strings become an empty object. Other strings
// are parsed as JSON. Maps are used as they are; any other value goes
// through a JSON round trip. The result must be an object: arrays and primitives are rejected
// with *api.InvalidArgumentsError.
func NormalizeArguments(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		if v == nil {
			return map[string]any{}, nil
		}
		return v, nil
	case json.RawMessage:
		return parseArguments(v)
	case []byte:
		return parseArguments(v)
	case string:
		return parseArguments([]byte(v))
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &api.InvalidArgumentsError{Reason: notAnObject, Err: err}
	}
	return parseArguments(data)
}

func parseArguments(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &api.InvalidArgumentsError{Reason: "Tool parameters must be valid JSON", Err: err}
	}
	if dec.More() {
		return nil, &api.InvalidArgumentsError{Reason: "Tool parameters must be a single JSON value"}
	}

	switch v := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, &api.InvalidArgumentsError{Reason: notAnObject}
	}
}

// Invoke calls the named tool with raw arguments. The tool must appear in
// a fresh listing. timeout bounds the call itself; zero leaves only the
// session's own timeout.
//
// The server's result object is returned unchanged, including results with
// isError set.
func (i *Invoker) Invoke(ctx context.Context, name string, raw any, timeout time.Duration) (map[string]any, error) {
	args, err := NormalizeArguments(raw)
	if err != nil {
		var invalid *api.InvalidArgumentsError
		if errors.As(err, &invalid) && invalid.Tool == "" {
			invalid.Tool = name
		}
		return nil, err
	}

	if err := i.ensureExists(ctx, name); err != nil {
		return nil, err
	}

	return i.call(ctx, name, args, timeout)
}

// Call invokes name with already validated arguments, skipping the
// existence check.
func (i *Invoker) Call(ctx context.Context, name string, args map[string]any, timeout time.Duration) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}
	return i.call(ctx, name, args, timeout)
}

func (i *Invoker) call(ctx context.Context, name string, args map[string]any, timeout time.Duration) (map[string]any, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	i.logger.Debug("Calling tool %s", name)
	raw, err := i.querier.Query(ctx, methodCallTool, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, &api.ToolExecutionError{Tool: name, Err: err}
	}

	result, err := capability.Decode(raw)
	if err != nil {
		return nil, &api.ToolExecutionError{Tool: name, Err: err}
	}
	if isError, _ := result["isError"].(bool); isError {
		i.logger.Warn("Tool %s reported an error result", name)
	}
	return result, nil
}

func (i *Invoker) ensureExists(ctx context.Context, name string) error {
	tools, err := i.lister.Tools(ctx)
	if err != nil {
		return err
	}

	available := make([]string, 0, len(tools))
	for _, tool := range tools {
		if tool.Name == name {
			return nil
		}
		available = append(available, tool.Name)
	}
	i.logger.Debug("Tool %s not found among: %s", name, strings.Join(available, ", "))
	return &api.ToolNotFoundError{Tool: name, Available: available}
}
