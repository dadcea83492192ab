package node

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/batch"
	"mcpnode/internal/capability"
	"mcpnode/internal/config"
	"mcpnode/internal/invoker"
	"mcpnode/internal/mcpclient"
	"mcpnode/internal/toolset"

	"github.com/google/uuid"
)

// Deps are the collaborators of one execution.
type Deps struct {
	Params      api.ParameterSource
	Credentials api.CredentialSource
	Logger      api.Logger
	Tolerance   api.FailureTolerance

	// Environ is the process environment snapshot for stdio launches
	Environ  []string
	Identity mcpclient.Identity
	Batch    config.BatchOptions
}

// Execute runs the configured operation once per input item over a single
// session. The session is closed before Execute returns, whatever the outcome.
// An empty item list runs the operation once.
func Execute(ctx context.Context, deps Deps, items []api.Item) ([]api.ItemResult, error) {
	logger := deps.Logger
	if logger == nil {
		logger = api.NopLogger{}
	}
	if deps.Params == nil {
		deps.Params = Parameters{}
	}

	op, err := api.ParseOperation(asString(deps.Params.Get(ParamOperation, 0, "")))
	if err != nil {
		return nil, err
	}

	spec, err := resolveSpec(deps)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger.Debug("Run %s: %s over %s (%s)", runID, op, spec.Kind, spec.Target())

	tr, err := mcpclient.NewTransport(spec)
	if err != nil {
		return nil, err
	}
	session, err := mcpclient.Open(ctx, tr, mcpclient.Options{Identity: deps.Identity, Timeout: spec.Timeout})
	if err != nil {
		logger.Error("MCP client connection error: %v", err)
		return nil, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("Run %s: failed to close session: %v", runID, closeErr)
		}
	}()

	count := max(len(items), 1)
	exec := batch.New(config.ResolveBatch(deps.Batch, count), deps.Tolerance, logger)

	r := &runner{
		params:  deps.Params,
		logger:  logger,
		session: session,
		lister:  capability.NewLister(session, logger),
		invoker: invoker.New(session, logger),
		timeout: spec.Timeout,
	}

	results, err := exec.Run(ctx, count, func(ctx context.Context, index int) (map[string]any, error) {
		return r.run(ctx, op, index)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Run %s finished with %d results", runID, len(results))
	return results, nil
}

func resolveSpec(deps Deps) (api.ConnectionSpec, error) {
	kind, err := api.ParseConnectionKind(asString(deps.Params.Get(ParamConnectionType, 0, "")))
	if err != nil {
		return api.ConnectionSpec{}, err
	}

	var creds map[string]any
	if deps.Credentials != nil {
		creds, err = deps.Credentials.Get(kind)
		if err != nil {
			return api.ConnectionSpec{}, &api.ConfigurationError{Field: "credentials", Message: "failed to load " + string(kind) + " credentials", Err: err}
		}
	}

	return config.BuildConnectionSpec(config.ConnectionInput{
		Kind:        kind,
		Credentials: creds,
		URIOverride: asString(deps.Params.Get(ParamURIOverride, 0, "")),
		HeadersText: asString(deps.Params.Get(ParamHeaders, 0, "")),
		Environ:     deps.Environ,
	})
}

type runner struct {
	params  api.ParameterSource
	logger  api.Logger
	session *mcpclient.Session
	lister  *capability.Lister
	invoker *invoker.Invoker
	timeout time.Duration
}

func (r *runner) run(ctx context.Context, op api.Operation, index int) (map[string]any, error) {
	switch op {
	case api.OperationListResources:
		resources, err := r.lister.ListResources(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"resources": resources}, nil

	case api.OperationListResourceTemplates:
		templates, err := r.lister.ListResourceTemplates(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"resourceTemplates": templates}, nil

	case api.OperationReadResource:
		uri := strings.TrimSpace(asString(r.params.Get(ParamResourceURI, index, "")))
		if uri == "" {
			return nil, api.NewConfigurationError(ParamResourceURI, "a resource URI is required")
		}
		resource, err := r.lister.ReadResource(ctx, uri)
		if err != nil {
			return nil, err
		}
		return map[string]any{"resource": resource}, nil

	case api.OperationListTools:
		return r.listTools(ctx, index)

	case api.OperationExecuteTool:
		return r.executeTool(ctx, index)

	case api.OperationListPrompts:
		prompts, err := r.lister.ListPrompts(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"prompts": prompts}, nil

	case api.OperationGetPrompt:
		name := strings.TrimSpace(asString(r.params.Get(ParamPromptName, index, "")))
		if name == "" {
			return nil, api.NewConfigurationError(ParamPromptName, "a prompt name is required")
		}
		args, err := promptArguments(r.params.Get(ParamPromptArguments, index, nil))
		if err != nil {
			return nil, &api.ConfigurationError{Field: ParamPromptArguments, Message: "invalid prompt arguments", Err: err}
		}
		prompt, err := r.lister.GetPrompt(ctx, name, args)
		if err != nil {
			return nil, err
		}
		return map[string]any{"prompt": prompt}, nil
	}
	return nil, api.NewConfigurationError(ParamOperation, "operation %s not supported", op)
}

func (r *runner) listTools(ctx context.Context, index int) (map[string]any, error) {
	if asBool(r.params.Get(ParamFunctionCalling, index, false)) {
		tools, err := toolset.Build(ctx, r.session, r.timeout, r.logger)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(tools))
		for i, t := range tools {
			out[i] = toolRecord(t.Name, t.Description, t.Schema)
		}
		functions, err := toJSONValue(toolset.Params(tools))
		if err != nil {
			return nil, err
		}
		return map[string]any{"tools": out, "functions": functions}, nil
	}

	tools, err := r.lister.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(tools))
	for i, t := range tools {
		description := t.Description
		if description == "" {
			description = toolset.DefaultDescription(t.Name)
		}
		out[i] = toolRecord(t.Name, description, t.InputSchema)
	}
	return map[string]any{"tools": out}, nil
}

// toolRecord keeps schema as the server's object, never a re-rendering.
func toolRecord(name, description string, schema map[string]any) map[string]any {
	return map[string]any{
		"name":        name,
		"description": description,
		"schema":      schema,
	}
}

func (r *runner) executeTool(ctx context.Context, index int) (map[string]any, error) {
	name := strings.TrimSpace(asString(r.params.Get(ParamToolName, index, "")))
	if name == "" {
		return nil, api.NewConfigurationError(ParamToolName, "a tool name is required")
	}
	raw := r.params.Get(ParamToolParameters, index, nil)

	if asBool(r.params.Get(ParamFunctionCalling, index, false)) {
		tools, err := toolset.Build(ctx, r.session, r.timeout, r.logger)
		if err != nil {
			return nil, err
		}
		tool, ok := toolset.Find(tools, name)
		if !ok {
			return nil, &api.ToolNotFoundError{Tool: name, Available: toolset.Names(tools)}
		}
		result, err := tool.Call(ctx, raw)
		if err != nil {
			return nil, err
		}
		return map[string]any{"result": result}, nil
	}

	result, err := r.invoker.Invoke(ctx, name, raw, r.timeout)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": result}, nil
}

// toJSONValue converts v to plain decoded JSON.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
