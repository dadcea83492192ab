package mcpclient

import (
	"context"
	"fmt"
	"net/http"

	"mcpnode/internal/api"
	"mcpnode/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// SSETransport connects to a remote MCP server using Server-Sent Events.
type SSETransport struct {
	url        string
	headers    map[string]string
	httpClient *http.Client
}

// NewSSETransport creates an SSE transport. httpClient may be nil.
func NewSSETransport(url string, headers map[string]string, httpClient *http.Client) *SSETransport {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &SSETransport{
		url:        url,
		headers:    headers,
		httpClient: httpClient,
	}
}

func (t *SSETransport) Kind() api.ConnectionKind { return api.ConnectionKindSSE }

func (t *SSETransport) Target() string { return t.url }

// Connect opens the event stream. The stream is bound to ctx, and onLost
// is called when it ends while the client is still open.
func (t *SSETransport) Connect(ctx context.Context, onLost func(error)) (*client.Client, error) {
	logging.Debug("SSETransport", "Creating SSE client for URL: %s", t.url)

	var base http.RoundTripper
	if t.httpClient != nil {
		base = t.httpClient.Transport
	}
	opts := []transport.ClientOption{
		transport.WithHTTPClient(&http.Client{Transport: newStreamWatcher(base, onLost)}),
		transport.WithSSELogger(transportLogger{subsystem: "SSETransport"}),
	}
	if len(t.headers) > 0 {
		opts = append(opts, transport.WithHeaders(t.headers))
		logging.Debug("SSETransport", "Configured %d custom headers", len(t.headers))
	}

	mcpClient, err := client.NewSSEMCPClient(t.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE client: %w", err)
	}
	mcpClient.OnConnectionLost(onLost)

	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to start SSE transport: %w", err)
	}

	return mcpClient, nil
}
