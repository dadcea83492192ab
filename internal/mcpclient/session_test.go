package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/testing/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var allKinds = []api.ConnectionKind{api.ConnectionKindStdio, api.ConnectionKindSSE, api.ConnectionKindHTTP}

func specFor(t *testing.T, kind api.ConnectionKind, fixture string) api.ConnectionSpec {
	t.Helper()

	switch kind {
	case api.ConnectionKindStdio:
		command, args, _ := mock.StdioCommand(t, fixture)
		return api.ConnectionSpec{
			Kind:    kind,
			Command: command,
			Args:    args,
			Env:     map[string]string{"PATH": os.Getenv("PATH"), mock.HelperEnv: fixture},
			Timeout: 10 * time.Second,
		}
	case api.ConnectionKindSSE:
		cfg, err := mock.Fixture(fixture)
		require.NoError(t, err)
		return api.ConnectionSpec{Kind: kind, URL: mock.StartHTTP(t, cfg, mock.HTTPTransportSSE), Timeout: 10 * time.Second}
	default:
		cfg, err := mock.Fixture(fixture)
		require.NoError(t, err)
		return api.ConnectionSpec{Kind: kind, URL: mock.StartHTTP(t, cfg, mock.HTTPTransportStreamableHTTP), Timeout: 10 * time.Second}
	}
}

func openSession(t *testing.T, kind api.ConnectionKind, fixture string) *Session {
	t.Helper()

	spec := specFor(t, kind, fixture)
	tr, err := NewTransport(spec)
	require.NoError(t, err)

	s, err := Open(context.Background(), tr, Options{Timeout: spec.Timeout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(string(kind), func(t *testing.T) {
			s := openSession(t, kind, "echo")

			assert.Equal(t, kind, s.Kind())
			assert.Equal(t, "mock-echo", s.ServerInfo().Name)
			require.NoError(t, s.Ping(context.Background()))

			raw, err := s.Query(context.Background(), "tools/list", nil)
			require.NoError(t, err)

			var listing struct {
				Tools []struct {
					Name        string         `json:"name"`
					InputSchema map[string]any `json:"inputSchema"`
				} `json:"tools"`
			}
			require.NoError(t, json.Unmarshal(raw, &listing))
			require.Len(t, listing.Tools, 1)
			assert.Equal(t, "echo", listing.Tools[0].Name)
			assert.Equal(t, mock.EchoSchema(), listing.Tools[0].InputSchema)

			require.NoError(t, s.Close())
			assert.NoError(t, s.Close(), "second close must be a no-op")

			_, err = s.Query(context.Background(), "tools/list", nil)
			assert.ErrorIs(t, err, ErrSessionClosed)
			assert.ErrorIs(t, s.Ping(context.Background()), ErrSessionClosed)
		})
	}
}

func TestSessionQueryRPCError(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(string(kind), func(t *testing.T) {
			s := openSession(t, kind, "demo")

			_, err := s.Query(context.Background(), "tools/call", map[string]any{"name": "fail", "arguments": map[string]any{}})
			require.Error(t, err)

			var rpcErr *RPCError
			require.True(t, errors.As(err, &rpcErr), "expected RPCError, got %T: %v", err, err)
			assert.Contains(t, rpcErr.Message, "tool exploded")
		})
	}
}

func TestSessionConcurrentQueries(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(string(kind), func(t *testing.T) {
			s := openSession(t, kind, "echo")

			const n = 16
			texts := make([]string, n)
			g, ctx := errgroup.WithContext(context.Background())
			for i := 0; i < n; i++ {
				g.Go(func() error {
					raw, err := s.Query(ctx, "tools/call", map[string]any{
						"name":      "echo",
						"arguments": map[string]any{"msg": fmt.Sprintf("message-%d", i)},
					})
					if err != nil {
						return err
					}
					var result struct {
						Content []struct {
							Text string `json:"text"`
						} `json:"content"`
					}
					if err := json.Unmarshal(raw, &result); err != nil {
						return err
					}
					if len(result.Content) != 1 {
						return fmt.Errorf("unexpected content %s", raw)
					}
					texts[i] = result.Content[0].Text
					return nil
				})
			}
			require.NoError(t, g.Wait())

			for i, text := range texts {
				assert.Equal(t, fmt.Sprintf("message-%d", i), text)
			}
		})
	}
}

func TestOpenHandshakeFailureClosesTransport(t *testing.T) {
	spec := specFor(t, api.ConnectionKindStdio, "no-such-fixture")
	spec.Timeout = 2 * time.Second

	tr, err := NewTransport(spec)
	require.NoError(t, err)

	_, err = Open(context.Background(), tr, Options{Timeout: spec.Timeout})
	require.Error(t, err)
	assert.True(t, api.IsConnectionError(err))
	assert.Contains(t, err.Error(), "failed to connect to MCP server (stdio")
}

func TestOpenUnreachableServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	for _, kind := range []api.ConnectionKind{api.ConnectionKindSSE, api.ConnectionKindHTTP} {
		t.Run(string(kind), func(t *testing.T) {
			tr, err := NewTransport(api.ConnectionSpec{Kind: kind, URL: "http://" + addr + "/mcp"})
			require.NoError(t, err)

			_, err = Open(context.Background(), tr, Options{Timeout: 2 * time.Second})
			require.Error(t, err)

			var connErr *api.ConnectionError
			require.ErrorAs(t, err, &connErr)
			assert.Equal(t, kind, connErr.Kind)
		})
	}
}

func TestOpenUsesDefaultIdentity(t *testing.T) {
	assert.Equal(t, "McpClient-client", DefaultIdentity.Name)
	assert.Equal(t, "1.0.0", DefaultIdentity.Version)
}

func TestMarkFatalSurfacesOnNextCall(t *testing.T) {
	s := openSession(t, api.ConnectionKindHTTP, "echo")

	s.markFatal(errors.New("stream reset"))

	_, err := s.Query(context.Background(), "tools/list", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport error: stream reset")
	assert.Equal(t, err, s.Err())

	require.NoError(t, s.Close())
}

func TestMarkFatalIgnoredAfterClose(t *testing.T) {
	s := openSession(t, api.ConnectionKindHTTP, "echo")
	require.NoError(t, s.Close())

	s.markFatal(errors.New("reader stopped"))
	assert.NoError(t, s.Err())
}

func TestStdioServerExitFailsPendingCall(t *testing.T) {
	spec := specFor(t, api.ConnectionKindStdio, mock.CrashFixture)
	spec.Timeout = 30 * time.Second

	tr, err := NewTransport(spec)
	require.NoError(t, err)
	s, err := Open(context.Background(), tr, Options{Timeout: spec.Timeout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	start := time.Now()
	_, err = s.Query(context.Background(), "tools/call", map[string]any{"name": "crash", "arguments": map[string]any{}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second, "call must fail when the process exits, not at its timeout")
	assert.Contains(t, err.Error(), "server process exited")
	require.Error(t, s.Err())
	assert.Equal(t, s.Err(), err)

	start = time.Now()
	_, err = s.Query(context.Background(), "tools/list", nil)
	assert.Equal(t, s.Err(), err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, s.Err(), s.Ping(context.Background()))
}

func TestSSEStreamDropFailsPendingCall(t *testing.T) {
	cfg := mock.EchoConfig()
	cfg.Tools = append(cfg.Tools, mock.ToolConfig{
		Name:        "slow",
		InputSchema: map[string]interface{}{"type": "object"},
		Responses:   []mock.ToolResponse{{Response: "late", Delay: "5s"}},
	})
	ms, err := mock.NewServer(cfg)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(nil)
	srv.Config.Handler = mock.Handler(ms, mock.HTTPTransportSSE, "http://"+srv.Listener.Addr().String())
	srv.Start()
	t.Cleanup(srv.Close)

	tr, err := NewTransport(api.ConnectionSpec{Kind: api.ConnectionKindSSE, URL: srv.URL + "/sse"})
	require.NoError(t, err)
	s, err := Open(context.Background(), tr, Options{Timeout: 30 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		_, err := s.Query(context.Background(), "tools/call", map[string]any{"name": "slow", "arguments": map[string]any{}})
		done <- err
	}()

	time.Sleep(300 * time.Millisecond)
	srv.CloseClientConnections()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Less(t, time.Since(start), 4*time.Second, "call must fail when the stream drops, not when the tool answers")
		assert.Contains(t, err.Error(), "transport error")
		assert.Equal(t, s.Err(), err)
	case <-time.After(10 * time.Second):
		t.Fatal("pending call did not fail after the event stream dropped")
	}
}

func TestCloseInterruptsPendingCall(t *testing.T) {
	cfg := mock.EchoConfig()
	cfg.Tools = append(cfg.Tools, mock.ToolConfig{
		Name:        "slow",
		InputSchema: map[string]interface{}{"type": "object"},
		Responses:   []mock.ToolResponse{{Response: "late", Delay: "5s"}},
	})
	tr, err := NewTransport(api.ConnectionSpec{Kind: api.ConnectionKindSSE, URL: mock.StartHTTP(t, cfg, mock.HTTPTransportSSE)})
	require.NoError(t, err)
	s, err := Open(context.Background(), tr, Options{Timeout: 30 * time.Second})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Query(context.Background(), "tools/call", map[string]any{"name": "slow", "arguments": map[string]any{}})
		done <- err
	}()

	time.Sleep(300 * time.Millisecond)
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.NoError(t, s.Err())
	case <-time.After(4 * time.Second):
		t.Fatal("pending call did not end after Close")
	}
}

type recordedRequest struct {
	method string
	path   string
	query  string
	trace  string
}

// headerRecorder notes every request before handing it on. Paths listed
// in rewrite are served as if they had been sent to the mapped path.
type headerRecorder struct {
	next    http.Handler
	rewrite map[string]string

	mu       sync.Mutex
	requests []recordedRequest
}

func (h *headerRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.RawQuery,
		trace:  r.Header.Get("X-Trace"),
	})
	h.mu.Unlock()

	if to, ok := h.rewrite[r.URL.Path]; ok {
		r.URL.Path = to
	}
	h.next.ServeHTTP(w, r)
}

func (h *headerRecorder) recorded() []recordedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedRequest(nil), h.requests...)
}

func startRecordingServer(t *testing.T, transport mock.HTTPTransportType, rewrite map[string]string) (*headerRecorder, string) {
	t.Helper()

	ms, err := mock.NewServer(mock.EchoConfig())
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(nil)
	recorder := &headerRecorder{
		next:    mock.Handler(ms, transport, "http://"+srv.Listener.Addr().String()),
		rewrite: rewrite,
	}
	srv.Config.Handler = recorder
	srv.Start()
	t.Cleanup(srv.Close)
	return recorder, srv.URL
}

func TestHeadersReachServer(t *testing.T) {
	tests := []struct {
		kind      api.ConnectionKind
		transport mock.HTTPTransportType
		path      string
		wantSeen  []string
	}{
		{kind: api.ConnectionKindSSE, transport: mock.HTTPTransportSSE, path: "/sse", wantSeen: []string{"GET /sse", "POST /message"}},
		{kind: api.ConnectionKindHTTP, transport: mock.HTTPTransportStreamableHTTP, path: "/mcp", wantSeen: []string{"POST /mcp"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			recorder, base := startRecordingServer(t, tt.transport, nil)

			tr, err := NewTransport(api.ConnectionSpec{
				Kind:    tt.kind,
				URL:     base + tt.path,
				Headers: map[string]string{"X-Trace": "abc"},
			})
			require.NoError(t, err)
			s, err := Open(context.Background(), tr, Options{Timeout: 10 * time.Second})
			require.NoError(t, err)
			_, err = s.Query(context.Background(), "tools/list", nil)
			require.NoError(t, err)

			requests := recorder.recorded()
			require.NoError(t, s.Close())

			seen := map[string]bool{}
			for _, r := range requests {
				seen[r.method+" "+r.path] = true
				assert.Equal(t, "abc", r.trace, "%s %s", r.method, r.path)
			}
			for _, want := range tt.wantSeen {
				assert.True(t, seen[want], "no %s request reached the server", want)
			}
		})
	}
}

func TestSSEMessagesEndpointOverride(t *testing.T) {
	recorder, base := startRecordingServer(t, mock.HTTPTransportSSE, map[string]string{"/custom": "/message"})

	tr, err := NewTransport(api.ConnectionSpec{
		Kind:             api.ConnectionKindSSE,
		URL:              base + "/sse",
		MessagesEndpoint: base + "/custom",
		Headers:          map[string]string{"X-Trace": "abc"},
	})
	require.NoError(t, err)
	s, err := Open(context.Background(), tr, Options{Timeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	raw, err := s.Query(context.Background(), "tools/list", nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"echo"`)

	var posts []recordedRequest
	for _, r := range recorder.recorded() {
		if r.method == http.MethodPost {
			posts = append(posts, r)
		}
	}
	require.NotEmpty(t, posts)
	for _, p := range posts {
		assert.Equal(t, "/custom", p.path)
		assert.Contains(t, p.query, "sessionId=")
		assert.Equal(t, "abc", p.trace)
	}
}
