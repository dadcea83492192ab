package config

import (
	"testing"
	"time"

	"mcpnode/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionSpec_Stdio(t *testing.T) {
	spec, err := BuildConnectionSpec(ConnectionInput{
		Kind: api.ConnectionKindStdio,
		Credentials: map[string]any{
			"command":      "npx",
			"args":         "-y @modelcontextprotocol/server-everything",
			"environments": "API_KEY=abc",
		},
		Environ: []string{"PATH=/usr/bin", "MCP_REGION=eu", "HOME=/root"},
	})
	require.NoError(t, err)

	assert.Equal(t, api.ConnectionKindStdio, spec.Kind)
	assert.Equal(t, "npx", spec.Command)
	assert.Equal(t, []string{"-y", "@modelcontextprotocol/server-everything"}, spec.Args)
	assert.Equal(t, map[string]string{"PATH": "/usr/bin", "API_KEY": "abc", "REGION": "eu"}, spec.Env)
	assert.Equal(t, 600000*time.Millisecond, spec.Timeout)
	assert.Empty(t, spec.URL)
	assert.Empty(t, spec.Headers)
}

func TestBuildConnectionSpec_StdioArgs(t *testing.T) {
	tests := []struct {
		name string
		args any
		want []string
	}{
		{"absent", nil, nil},
		{"empty string", "", nil},
		{"single spaces", "a b c", []string{"a", "b", "c"}},
		{"double space keeps empty argument", "a  b", []string{"a", "", "b"}},
		{"quotes are not interpreted", `--name "two words"`, []string{"--name", `"two`, `words"`}},
		{"yaml list", []any{"--port", 8080}, []string{"--port", "8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := BuildConnectionSpec(ConnectionInput{
				Kind:        api.ConnectionKindStdio,
				Credentials: map[string]any{"command": "server", "args": tt.args},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Args)
		})
	}
}

func TestBuildConnectionSpec_Remote(t *testing.T) {
	tests := []struct {
		name        string
		input       ConnectionInput
		wantURL     string
		wantHeaders map[string]string
		wantTimeout time.Duration
		wantErr     string
	}{
		{
			name: "stored url and headers",
			input: ConnectionInput{
				Kind:        api.ConnectionKindHTTP,
				Credentials: map[string]any{"url": "https://example.com/mcp", "headers": "Authorization=Bearer a\nX-Team=core"},
			},
			wantURL:     "https://example.com/mcp",
			wantHeaders: map[string]string{"Authorization": "Bearer a", "X-Team": "core"},
			wantTimeout: 60000 * time.Millisecond,
		},
		{
			name: "override url wins",
			input: ConnectionInput{
				Kind:        api.ConnectionKindSSE,
				Credentials: map[string]any{"url": "https://stored.example.com/sse"},
				URIOverride: "http://localhost:9000/sse",
			},
			wantURL:     "http://localhost:9000/sse",
			wantHeaders: map[string]string{},
			wantTimeout: 60000 * time.Millisecond,
		},
		{
			name: "run headers override stored headers",
			input: ConnectionInput{
				Kind:        api.ConnectionKindHTTP,
				Credentials: map[string]any{"url": "https://example.com/mcp", "headers": "Authorization=Bearer old\nX-Keep=1"},
				HeadersText: "Authorization=Bearer new",
			},
			wantURL:     "https://example.com/mcp",
			wantHeaders: map[string]string{"Authorization": "Bearer new", "X-Keep": "1"},
			wantTimeout: 60000 * time.Millisecond,
		},
		{
			name: "legacy url and timeout keys",
			input: ConnectionInput{
				Kind:        api.ConnectionKindSSE,
				Credentials: map[string]any{"sseUrl": "https://example.com/sse", "sseTimeout": 1500},
			},
			wantURL:     "https://example.com/sse",
			wantHeaders: map[string]string{},
			wantTimeout: 1500 * time.Millisecond,
		},
		{
			name: "timeout from json number",
			input: ConnectionInput{
				Kind:        api.ConnectionKindHTTP,
				Credentials: map[string]any{"httpStreamUrl": "https://example.com/mcp", "timeout": float64(2500)},
			},
			wantURL:     "https://example.com/mcp",
			wantHeaders: map[string]string{},
			wantTimeout: 2500 * time.Millisecond,
		},
		{
			name:    "missing url",
			input:   ConnectionInput{Kind: api.ConnectionKindHTTP, Credentials: map[string]any{}},
			wantErr: "invalid url: no URL configured for http connection",
		},
		{
			name: "relative override",
			input: ConnectionInput{
				Kind:        api.ConnectionKindSSE,
				Credentials: map[string]any{"url": "https://example.com/sse"},
				URIOverride: "/sse",
			},
			wantErr: `invalid uriOverride: "/sse" is not an absolute URL`,
		},
		{
			name: "stored url without host",
			input: ConnectionInput{
				Kind:        api.ConnectionKindHTTP,
				Credentials: map[string]any{"url": "localhost:8080"},
			},
			wantErr: "is not an absolute URL",
		},
		{
			name: "unparsable url",
			input: ConnectionInput{
				Kind:        api.ConnectionKindHTTP,
				Credentials: map[string]any{"url": "http://[::1"},
			},
			wantErr: "is not a valid URL",
		},
		{
			name: "bad timeout",
			input: ConnectionInput{
				Kind:        api.ConnectionKindHTTP,
				Credentials: map[string]any{"url": "https://example.com/mcp", "timeout": "soon"},
			},
			wantErr: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := BuildConnectionSpec(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, api.IsConfigurationError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Kind, spec.Kind)
			assert.Equal(t, tt.wantURL, spec.URL)
			assert.Equal(t, tt.wantHeaders, spec.Headers)
			assert.Equal(t, tt.wantTimeout, spec.Timeout)
			assert.Empty(t, spec.Command)
			assert.Empty(t, spec.Env)
		})
	}
}

func TestBuildConnectionSpec_MessagesEndpoint(t *testing.T) {
	spec, err := BuildConnectionSpec(ConnectionInput{
		Kind: api.ConnectionKindSSE,
		Credentials: map[string]any{
			"url":                  "https://example.com/sse",
			"messagesPostEndpoint": "https://example.com/custom/messages",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/custom/messages", spec.MessagesEndpoint)

	_, err = BuildConnectionSpec(ConnectionInput{
		Kind: api.ConnectionKindSSE,
		Credentials: map[string]any{
			"url":                  "https://example.com/sse",
			"messagesPostEndpoint": "messages",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid messagesPostEndpoint")
}

func TestBuildConnectionSpec_Errors(t *testing.T) {
	_, err := BuildConnectionSpec(ConnectionInput{Kind: api.ConnectionKindStdio, Credentials: map[string]any{}})
	require.Error(t, err)
	assert.True(t, api.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "no command configured")

	_, err = BuildConnectionSpec(ConnectionInput{Kind: "websocket"})
	require.Error(t, err)
	assert.True(t, api.IsConfigurationError(err))
}
