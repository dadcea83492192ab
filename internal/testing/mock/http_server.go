package mock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"mcpnode/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// HTTPTransportType represents the type of HTTP transport for mock servers
type HTTPTransportType string

const (
	// HTTPTransportStreamableHTTP uses streamable HTTP protocol
	HTTPTransportStreamableHTTP HTTPTransportType = "streamable-http"
	// HTTPTransportSSE uses Server-Sent Events protocol
	HTTPTransportSSE HTTPTransportType = "sse"
)

// HTTPServer wraps a mock MCP server with HTTP transport capabilities.
// It can serve either SSE or streamable-http transport types.
type HTTPServer struct {
	mockServer    *Server
	httpServer    *http.Server
	listener      net.Listener
	transport     HTTPTransportType
	mu            sync.RWMutex
	running       bool
	shutdownError error
}

// NewHTTPServer creates a new HTTP mock server from an existing mock server
func NewHTTPServer(mockServer *Server, transport HTTPTransportType) *HTTPServer {
	return &HTTPServer{
		mockServer: mockServer,
		transport:  transport,
	}
}

// Handler builds the HTTP handler for the given transport. baseURL is only
// used by SSE, which announces absolute message endpoints.
func Handler(mockServer *Server, transport HTTPTransportType, baseURL string) http.Handler {
	switch transport {
	case HTTPTransportSSE:
		return server.NewSSEServer(
			mockServer.MCPServer(),
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
	default:
		return server.NewStreamableHTTPServer(mockServer.MCPServer())
	}
}

// Start starts serving on addr, for example "127.0.0.1:0" for a free port.
// It returns the bound address.
func (s *HTTPServer) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.listener.Addr().String(), nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	bound := listener.Addr().String()
	logging.Debug("MockServer", "Starting mock HTTP server (%s) on %s", s.transport, bound)

	s.httpServer = &http.Server{
		Handler:           Handler(s.mockServer, s.transport, "http://"+bound),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.shutdownError = err
			s.mu.Unlock()
			logging.Error("MockServer", err, "Mock HTTP server stopped unexpectedly")
		}
	}()

	s.running = true
	return bound, nil
}

// Stop gracefully shuts down the HTTP server
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	shutdownCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.httpServer.Close()
		logging.Warn("MockServer", "Force closed mock HTTP server: %v", err)
	}

	s.running = false
	s.httpServer = nil
	return nil
}

// Endpoint returns the URL clients should connect to, or "" when stopped.
func (s *HTTPServer) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return ""
	}

	if s.transport == HTTPTransportSSE {
		return fmt.Sprintf("http://%s/sse", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://%s/mcp", s.listener.Addr().String())
}

// Err returns any error that occurred during server operation
func (s *HTTPServer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shutdownError
}
