package mcpclient

import (
	"context"
	"fmt"
	"net/http"

	"mcpnode/internal/api"
	"mcpnode/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
)

// Transport is an unopened channel to one MCP server. Connect creates the
// underlying protocol client and starts the channel; the protocol handshake
// is left to Open. A Transport is connected at most once.
//
// ctx bounds the whole connection, not just the connect step. onLost is
// called when the channel fails outside of any single request, such as a
// server process exiting or an event stream dropping; it may be called
// more than once and after the client was closed.
type Transport interface {
	Kind() api.ConnectionKind
	Target() string
	Connect(ctx context.Context, onLost func(error)) (*client.Client, error)
}

// Compile-time interface compliance checks
var (
	_ Transport = (*StdioTransport)(nil)
	_ Transport = (*SSETransport)(nil)
	_ Transport = (*StreamableHTTPTransport)(nil)
)

// NewTransport creates the transport matching spec.Kind.
//
// Supported kinds:
//   - "stdio": a local subprocess talking over stdin/stdout
//   - "sse": a remote server using Server-Sent Events
//   - "http": a remote server using streamable HTTP
//
// For sse and http, spec.MessagesEndpoint redirects outbound POSTs
// while the URL stays the stream source.
func NewTransport(spec api.ConnectionSpec) (Transport, error) {
	switch spec.Kind {
	case api.ConnectionKindStdio:
		if spec.Command == "" {
			return nil, api.NewConfigurationError("command", "command is required for stdio type")
		}
		return NewStdioTransport(spec.Command, spec.Args, spec.Env), nil

	case api.ConnectionKindSSE, api.ConnectionKindHTTP:
		if spec.URL == "" {
			return nil, api.NewConfigurationError("url", "url is required for %s type", spec.Kind)
		}
		httpClient, err := httpClientFor(spec.MessagesEndpoint)
		if err != nil {
			return nil, err
		}
		if spec.Kind == api.ConnectionKindSSE {
			return NewSSETransport(spec.URL, spec.Headers, httpClient), nil
		}
		return NewStreamableHTTPTransport(spec.URL, spec.Headers, httpClient), nil

	default:
		return nil, api.NewConfigurationError("connectionType", "unsupported MCP connection type: %s (supported: %s, %s, %s)",
			spec.Kind, api.ConnectionKindStdio, api.ConnectionKindSSE, api.ConnectionKindHTTP)
	}
}

func httpClientFor(messagesEndpoint string) (*http.Client, error) {
	if messagesEndpoint == "" {
		return nil, nil
	}
	rt, err := newEndpointRewriter(messagesEndpoint, http.DefaultTransport)
	if err != nil {
		return nil, &api.ConfigurationError{Field: "messagesPostEndpoint", Message: fmt.Sprintf("cannot use %q", messagesEndpoint), Err: err}
	}
	logging.Debug("TransportFactory", "Outbound messages are sent to %s", messagesEndpoint)
	return &http.Client{Transport: rt}, nil
}
