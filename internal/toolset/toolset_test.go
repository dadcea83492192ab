package toolset

import (
	"context"
	"testing"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/mcpclient"
	"mcpnode/internal/schema"
	"mcpnode/internal/testing/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSession(t *testing.T) *mcpclient.Session {
	t.Helper()

	url := mock.StartHTTP(t, mock.DemoConfig(), mock.HTTPTransportStreamableHTTP)
	tr, err := mcpclient.NewTransport(api.ConnectionSpec{Kind: api.ConnectionKindHTTP, URL: url})
	require.NoError(t, err)
	session, err := mcpclient.Open(context.Background(), tr, mcpclient.Options{Timeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestBuild(t *testing.T) {
	tools, err := Build(context.Background(), demoSession(t), 5*time.Second, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"echo", "configure", "fail"}, Names(tools))
	assert.Len(t, Params(tools), 3)

	configure, ok := Find(tools, "configure")
	require.True(t, ok)
	assert.Equal(t, "Store a profile", configure.Description)
	assert.Equal(t, mock.NestedSchema(), configure.Schema)
	assert.Equal(t, []string{"name", "settings"}, configure.Typed.RequiredNames())
	require.NotNil(t, configure.Param.OfTool)
	assert.Equal(t, "configure", configure.Param.OfTool.Name)

	fail, ok := Find(tools, "fail")
	require.True(t, ok)
	assert.Equal(t, "Execute the fail tool", fail.Description)

	_, ok = Find(tools, "missing")
	assert.False(t, ok)
}

func TestCall(t *testing.T) {
	tools, err := Build(context.Background(), demoSession(t), 5*time.Second, nil)
	require.NoError(t, err)
	ctx := context.Background()

	echo, _ := Find(tools, "echo")
	result, err := echo.Call(ctx, `{"msg":"hello"}`)
	require.NoError(t, err)
	content := result["content"].([]any)
	assert.Equal(t, "hello", content[0].(map[string]any)["text"])

	_, err = echo.Call(ctx, `{}`)
	require.Error(t, err)
	assert.True(t, api.IsInvalidArguments(err))

	_, err = echo.Call(ctx, `[1,2]`)
	require.Error(t, err)
	var invalid *api.InvalidArgumentsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "echo", invalid.Tool)

	configure, _ := Find(tools, "configure")
	_, err = configure.Call(ctx, map[string]any{
		"name":     "p",
		"settings": map[string]any{"display": map[string]any{}},
	})
	require.Error(t, err, "nested required property must be enforced")

	result, err = configure.Call(ctx, map[string]any{
		"name":     "p",
		"settings": map[string]any{"display": map[string]any{"darkMode": true}},
	})
	require.NoError(t, err)
	content = result["content"].([]any)
	assert.Equal(t, "stored p", content[0].(map[string]any)["text"])

	fail, _ := Find(tools, "fail")
	_, err = fail.Call(ctx, nil)
	assert.True(t, api.IsToolExecutionError(err))
}

func TestCallUnboundTool(t *testing.T) {
	tool := FunctionTool{Name: "orphan", Validator: schema.Adapt("orphan", nil)}
	_, err := tool.Call(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, api.IsToolExecutionError(err))
}

func TestBuildRequiresTools(t *testing.T) {
	url := mock.StartHTTP(t, mock.Config{Name: "empty"}, mock.HTTPTransportStreamableHTTP)
	tr, err := mcpclient.NewTransport(api.ConnectionSpec{Kind: api.ConnectionKindHTTP, URL: url})
	require.NoError(t, err)
	session, err := mcpclient.Open(context.Background(), tr, mcpclient.Options{Timeout: 10 * time.Second})
	require.NoError(t, err)
	defer session.Close()

	_, err = Build(context.Background(), session, 0, nil)
	assert.True(t, api.IsNoCapability(err))
}
