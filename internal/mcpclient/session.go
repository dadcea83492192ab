package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"mcpnode/internal/api"
	"mcpnode/pkg/logging"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Identity is the client name and version announced during the handshake.
type Identity struct {
	Name    string
	Version string
}

// DefaultIdentity is used when Options.Identity is empty.
var DefaultIdentity = Identity{Name: "McpClient-client", Version: "1.0.0"}

// Options configure Open.
type Options struct {
	Identity Identity
	// Timeout bounds the handshake and every later call. Zero means no bound.
	Timeout time.Duration
}

// ErrSessionClosed is returned by calls made after Close.
var ErrSessionClosed = errors.New("session closed")

// RPCError is an error response returned by the server for one request.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// Session is one initialized protocol session over one transport. It is
// safe for concurrent use; concurrent requests are correlated by id in the
// underlying transport.
type Session struct {
	kind    api.ConnectionKind
	target  string
	timeout time.Duration

	client     *client.Client
	serverInfo mcp.Implementation

	// runCtx lives as long as the connection. It is cancelled with the
	// fatal error, or with ErrSessionClosed on Close.
	runCtx    context.Context
	cancelRun context.CancelCauseFunc

	mu        sync.RWMutex
	connected bool
	closing   bool
	fatal     error

	closeOnce sync.Once
	closeErr  error
}

// Open connects t and performs the protocol handshake. On any failure the
// transport is closed before returning and the error is a
// *api.ConnectionError.
//
// The connection is bound to ctx, so ctx must stay alive for as long as the
// session is used. A transport failure reported outside of any request
// makes the session unusable: calls in flight return it at once and later
// calls fail with it.
//
// The handshake announces empty client capabilities. mcp-go's
// ClientCapabilities only carries roots, sampling and elicitation; there
// are no fields for prompts, resources or tools.
func Open(ctx context.Context, t Transport, opts Options) (*Session, error) {
	identity := opts.Identity
	if identity.Name == "" {
		identity = DefaultIdentity
	}

	runCtx, cancelRun := context.WithCancelCause(ctx)
	s := &Session{
		kind:      t.Kind(),
		target:    t.Target(),
		timeout:   opts.Timeout,
		runCtx:    runCtx,
		cancelRun: cancelRun,
	}

	mcpClient, err := t.Connect(runCtx, s.markFatal)
	if err != nil {
		cancelRun(err)
		return nil, s.connectionError(err)
	}

	initCtx, cancel := s.callContext(ctx)
	defer cancel()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    identity.Name,
		Version: identity.Version,
	}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	initResult, err := mcpClient.Initialize(initCtx, req)
	if err != nil {
		err = s.callError(err)
		logging.Error("Session", err, "Failed to initialize MCP protocol for %s", s.target)
		s.mu.Lock()
		s.closing = true
		s.mu.Unlock()
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Warn("Session", "Error closing failed client for %s: %v", s.target, closeErr)
		}
		cancelRun(err)
		return nil, s.connectionError(fmt.Errorf("failed to initialize MCP protocol: %w", err))
	}

	s.mu.Lock()
	s.client = mcpClient
	s.connected = true
	s.serverInfo = initResult.ServerInfo
	s.mu.Unlock()

	logging.Debug("Session", "MCP protocol initialized with %s %s over %s", initResult.ServerInfo.Name, initResult.ServerInfo.Version, s.kind)
	if initResult.Capabilities.Tools != nil {
		logging.Debug("Session", "Server %s supports tools", s.target)
	}
	if initResult.Capabilities.Resources != nil {
		logging.Debug("Session", "Server %s supports resources", s.target)
	}
	if initResult.Capabilities.Prompts != nil {
		logging.Debug("Session", "Server %s supports prompts", s.target)
	}

	return s, nil
}

// Kind returns the connection kind of the underlying transport.
func (s *Session) Kind() api.ConnectionKind { return s.kind }

// Target returns the command or URL of the underlying transport.
func (s *Session) Target() string { return s.target }

// ServerInfo returns the server identity reported during the handshake.
func (s *Session) ServerInfo() mcp.Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverInfo
}

// Err returns the asynchronous transport failure that made the session
// unusable, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fatal
}

func (s *Session) markFatal(err error) {
	if err == nil {
		err = errors.New("connection lost")
	}
	s.mu.Lock()
	if s.closing || s.fatal != nil {
		s.mu.Unlock()
		return
	}
	s.fatal = fmt.Errorf("transport error: %w", err)
	fatal := s.fatal
	s.mu.Unlock()

	logging.Warn("Session", "Connection to %s lost: %v", s.target, err)
	s.cancelRun(fatal)
}

// checkConnected returns the fatal error or a not-connected error.
// Caller must hold at least a read lock on mu.
func (s *Session) checkConnected() error {
	if s.fatal != nil {
		return s.fatal
	}
	if !s.connected || s.client == nil {
		return ErrSessionClosed
	}
	return nil
}

// callContext derives the context of one call from ctx. It is also
// cancelled when the connection ends, with the connection's cause.
func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(s.runCtx, func() {
		cancel(context.Cause(s.runCtx))
	})
	if s.timeout <= 0 {
		return callCtx, func() {
			stop()
			cancel(nil)
		}
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(callCtx, s.timeout)
	return timeoutCtx, func() {
		stop()
		cancelTimeout()
		cancel(nil)
	}
}

// callError prefers the reason the connection ended over the error the
// interrupted call saw.
func (s *Session) callError(err error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fatal != nil {
		return s.fatal
	}
	if s.closing {
		return ErrSessionClosed
	}
	return err
}

// Query sends one JSON-RPC request and returns the raw result object.
// Server error responses are returned as *RPCError.
func (s *Session) Query(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.RLock()
	if err := s.checkConnected(); err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	mcpClient := s.client
	s.mu.RUnlock()

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := mcpClient.GetTransport().SendRequest(callCtx, transport.JSONRPCRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      mcp.NewRequestId("mcpnode-" + uuid.NewString()),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, s.callError(err)
	}
	if resp.Error != nil {
		return nil, &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	return resp.Result, nil
}

// Ping checks that the server is responsive.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.RLock()
	if err := s.checkConnected(); err != nil {
		s.mu.RUnlock()
		return err
	}
	mcpClient := s.client
	s.mu.RUnlock()

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	if err := mcpClient.Ping(callCtx); err != nil {
		return s.callError(err)
	}
	return nil
}

// Close shuts the transport down. Only the first call has an effect; later
// calls return the same result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		mcpClient := s.client
		s.client = nil
		s.connected = false
		s.closing = true
		s.mu.Unlock()

		s.cancelRun(ErrSessionClosed)
		if mcpClient != nil {
			s.closeErr = mcpClient.Close()
		}
		logging.Debug("Session", "Closed session to %s", s.target)
	})
	return s.closeErr
}

func (s *Session) connectionError(err error) error {
	return &api.ConnectionError{Kind: s.kind, Target: s.target, Err: err}
}
