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

// StreamableHTTPTransport connects to a remote MCP server using streamable HTTP.
type StreamableHTTPTransport struct {
	url        string
	headers    map[string]string
	httpClient *http.Client
}

// NewStreamableHTTPTransport creates a streamable HTTP transport. httpClient may be nil.
func NewStreamableHTTPTransport(url string, headers map[string]string, httpClient *http.Client) *StreamableHTTPTransport {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &StreamableHTTPTransport{
		url:        url,
		headers:    headers,
		httpClient: httpClient,
	}
}

func (t *StreamableHTTPTransport) Kind() api.ConnectionKind { return api.ConnectionKindHTTP }

func (t *StreamableHTTPTransport) Target() string { return t.url }

// Connect prepares the HTTP client. No request is sent before the handshake.
// Every exchange is a request of its own, so failures surface on the call
// that hit them and onLost is not used.
func (t *StreamableHTTPTransport) Connect(ctx context.Context, _ func(error)) (*client.Client, error) {
	logging.Debug("StreamableHTTPTransport", "Creating StreamableHTTP client for URL: %s", t.url)

	opts := []transport.StreamableHTTPCOption{
		transport.WithHTTPLogger(transportLogger{subsystem: "StreamableHTTPTransport"}),
	}
	if len(t.headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(t.headers))
		logging.Debug("StreamableHTTPTransport", "Configured %d custom headers", len(t.headers))
	}
	if t.httpClient != nil {
		opts = append(opts, transport.WithHTTPBasicClient(t.httpClient))
	}

	mcpClient, err := client.NewStreamableHttpClient(t.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create StreamableHTTP client: %w", err)
	}

	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to start StreamableHTTP transport: %w", err)
	}

	return mcpClient, nil
}
