package capability

import (
	"context"
	"encoding/json"

	"mcpnode/internal/api"
)

const (
	methodListTools             = "tools/list"
	methodListPrompts           = "prompts/list"
	methodListResources         = "resources/list"
	methodListResourceTemplates = "resources/templates/list"
	methodReadResource          = "resources/read"
	methodGetPrompt             = "prompts/get"
)

// maxPages stops a server that keeps handing out fresh cursors.
const maxPages = 1000

// Querier sends one raw protocol request. *mcpclient.Session implements it.
type Querier interface {
	Query(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// ToolDescriptor is one tool from a listing. InputSchema is the schema
// exactly as the server sent it.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Lister queries the capabilities of an open session. Nothing is cached:
// every call goes to the server.
type Lister struct {
	querier Querier
	logger  api.Logger
}

// NewLister creates a Lister over q. A nil logger discards diagnostics.
func NewLister(q Querier, logger api.Logger) *Lister {
	if logger == nil {
		logger = api.NopLogger{}
	}
	return &Lister{querier: q, logger: logger}
}

// Tools lists every tool, following pagination. An empty listing is not an error.
func (l *Lister) Tools(ctx context.Context) ([]ToolDescriptor, error) {
	entries, err := l.listAll(ctx, methodListTools, "tools")
	if err != nil {
		return nil, err
	}

	tools := make([]ToolDescriptor, 0, len(entries))
	for _, entry := range entries {
		name, _ := entry["name"].(string)
		if name == "" {
			l.logger.Warn("Skipping tool without a name in %s response", methodListTools)
			continue
		}
		description, _ := entry["description"].(string)
		schema, _ := entry["inputSchema"].(map[string]any)
		tools = append(tools, ToolDescriptor{
			Name:        name,
			Description: description,
			InputSchema: schema,
		})
	}
	return tools, nil
}

// ListTools is Tools for callers that require at least one tool.
func (l *Lister) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	tools, err := l.Tools(ctx)
	if err != nil {
		return nil, err
	}
	if len(tools) == 0 {
		return nil, &api.NoCapabilityError{Capability: "tools"}
	}
	return tools, nil
}

// ListPrompts lists every prompt.
func (l *Lister) ListPrompts(ctx context.Context) ([]map[string]any, error) {
	return l.listAll(ctx, methodListPrompts, "prompts")
}

// ListResources lists every resource.
func (l *Lister) ListResources(ctx context.Context) ([]map[string]any, error) {
	return l.listAll(ctx, methodListResources, "resources")
}

// ListResourceTemplates lists every resource template.
func (l *Lister) ListResourceTemplates(ctx context.Context) ([]map[string]any, error) {
	return l.listAll(ctx, methodListResourceTemplates, "resourceTemplates")
}

// ReadResource returns the server's read result for uri unchanged.
func (l *Lister) ReadResource(ctx context.Context, uri string) (map[string]any, error) {
	return l.single(ctx, methodReadResource, uri, map[string]any{"uri": uri})
}

// GetPrompt renders the named prompt with args and returns the server's
// result unchanged. args may be nil.
func (l *Lister) GetPrompt(ctx context.Context, name string, args map[string]string) (map[string]any, error) {
	params := map[string]any{"name": name}
	if len(args) > 0 {
		params["arguments"] = args
	}
	return l.single(ctx, methodGetPrompt, name, params)
}

func (l *Lister) single(ctx context.Context, method, target string, params map[string]any) (map[string]any, error) {
	raw, err := l.querier.Query(ctx, method, params)
	if err != nil {
		return nil, &api.RemoteError{Operation: method, Target: target, Err: err}
	}
	result, err := Decode(raw)
	if err != nil {
		return nil, &api.RemoteError{Operation: method, Target: target, Err: err}
	}
	return result, nil
}

func (l *Lister) listAll(ctx context.Context, method, key string) ([]map[string]any, error) {
	var (
		all    []map[string]any
		cursor string
		seen   = map[string]bool{}
	)

	for pages := 0; pages < maxPages; pages++ {
		var params map[string]any
		if cursor != "" {
			params = map[string]any{"cursor": cursor}
		}

		raw, err := l.querier.Query(ctx, method, params)
		if err != nil {
			return nil, &api.RemoteError{Operation: method, Err: err}
		}
		p, err := normalizePage(raw, key)
		if err != nil {
			return nil, &api.RemoteError{Operation: method, Err: err}
		}
		all = append(all, p.entries...)

		if p.nextCursor == "" {
			break
		}
		if seen[p.nextCursor] {
			l.logger.Warn("Server repeated cursor %q for %s, stopping pagination", p.nextCursor, method)
			break
		}
		seen[p.nextCursor] = true
		cursor = p.nextCursor
	}

	l.logger.Debug("Listed %d %s", len(all), key)
	if all == nil {
		all = []map[string]any{}
	}
	return all, nil
}
