package mock

import (
	"context"
	"os"
	"testing"
)

// StartHTTP serves cfg over the given HTTP transport on a free local port
// for the duration of the test and returns the endpoint URL.
func StartHTTP(t testing.TB, cfg Config, transport HTTPTransportType) string {
	t.Helper()

	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("failed to create mock server: %v", err)
	}
	httpServer := NewHTTPServer(s, transport)
	if _, err := httpServer.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("failed to start mock HTTP server: %v", err)
	}
	t.Cleanup(func() {
		_ = httpServer.Stop(context.Background())
	})
	return httpServer.Endpoint()
}

// StdioCommand returns the command line that re-executes the running test
// binary as a stdio server for the named fixture, together with the
// environment lines that select it. The test binary's TestMain must call
// RunHelperIfRequested.
func StdioCommand(t testing.TB, fixture string) (command string, args []string, environments string) {
	t.Helper()

	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to locate test binary: %v", err)
	}
	return exe, []string{"-test.run=^$"}, HelperEnv + "=" + fixture
}
