package api

import (
	"fmt"
	"strings"
	"time"
)

// ConnectionKind selects the transport used to reach an MCP server.
type ConnectionKind string

const (
	// ConnectionKindStdio launches the server as a local subprocess and talks over its stdin/stdout
	ConnectionKindStdio ConnectionKind = "stdio"
	// ConnectionKindSSE connects to a remote server using Server-Sent Events
	ConnectionKindSSE ConnectionKind = "sse"
	// ConnectionKindHTTP connects to a remote server using streamable HTTP
	ConnectionKindHTTP ConnectionKind = "http"
)

// ParseConnectionKind resolves a user supplied connection kind.
// An empty value selects stdio and "cmd" is accepted as a synonym for stdio.
//
// Args:
//   - s: The connection kind as written in parameters or flags
//
// Returns:
//   - ConnectionKind: The resolved kind
//   - error: A ConfigurationError if the kind is not recognized
func ParseConnectionKind(s string) (ConnectionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stdio", "cmd":
		return ConnectionKindStdio, nil
	case "sse":
		return ConnectionKindSSE, nil
	case "http", "streamable-http", "httpstreamable":
		return ConnectionKindHTTP, nil
	default:
		return "", NewConfigurationError("connectionType", "unsupported connection type %q (supported: %s, %s, %s)",
			s, ConnectionKindStdio, ConnectionKindSSE, ConnectionKindHTTP)
	}
}

// ConnectionSpec is the fully resolved description of one connection.
// It is built once per run and not modified afterwards. Only the fields
// relevant to Kind are populated.
type ConnectionSpec struct {
	Kind ConnectionKind

	// Command and Args describe the stdio subprocess
	Command string
	Args    []string
	// Env is the complete child environment for the stdio subprocess
	Env map[string]string

	// URL is the event/stream source for sse and http connections
	URL string
	// MessagesEndpoint, when set, receives outbound POSTs instead of the endpoint the server announces
	MessagesEndpoint string
	// Headers are sent with every request on sse and http connections
	Headers map[string]string

	// Timeout bounds the handshake and every remote call
	Timeout time.Duration
}

// Target returns a human readable description of where the connection goes.
func (s ConnectionSpec) Target() string {
	if s.Kind == ConnectionKindStdio {
		if len(s.Args) == 0 {
			return s.Command
		}
		return fmt.Sprintf("%s %s", s.Command, strings.Join(s.Args, " "))
	}
	return s.URL
}

// Operation names one of the capability operations a run can perform.
type Operation string

const (
	OperationListResources         Operation = "listResources"
	OperationListResourceTemplates Operation = "listResourceTemplates"
	OperationReadResource          Operation = "readResource"
	OperationListTools             Operation = "listTools"
	OperationExecuteTool           Operation = "executeTool"
	OperationListPrompts           Operation = "listPrompts"
	OperationGetPrompt             Operation = "getPrompt"
)

// Operations lists every supported operation in display order.
var Operations = []Operation{
	OperationListResources,
	OperationListResourceTemplates,
	OperationReadResource,
	OperationListTools,
	OperationExecuteTool,
	OperationListPrompts,
	OperationGetPrompt,
}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	names := make([]string, len(Operations))
	for i, op := range Operations {
		names[i] = string(op)
	}
	return "", NewConfigurationError("operation", "unsupported operation %q (supported: %s)", s, strings.Join(names, ", "))
}
