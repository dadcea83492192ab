package cmd

import (
	"context"
	"fmt"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/testing/mock"
	"mcpnode/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	mockConfigPath string
	mockFixture    string
	mockTransport  string
	mockAddr       string
	mockWatch      bool
)

func newMockServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a scripted MCP server for local testing",
		Long: `Serve a mock MCP server whose tools, prompts and resources come from a
YAML file or from a built-in fixture (echo or demo).

Tool responses are Go templates rendered with sprig functions against the
call arguments. With --watch, edits to the config file reload its tools
without restarting the server.`,
		Example: `  mcpnode mock-server --fixture demo --transport http --addr 127.0.0.1:8090
  mcpnode mock-server --config tools.yaml --transport sse --watch`,
		Args: cobra.NoArgs,
		RunE: runMockServer,
	}

	cmd.Flags().StringVar(&mockConfigPath, "config", "", "Mock server configuration file")
	cmd.Flags().StringVar(&mockFixture, "fixture", "", "Built-in fixture to serve (echo or demo)")
	cmd.Flags().StringVar(&mockTransport, "transport", "stdio", "Transport: stdio, sse or http")
	cmd.Flags().StringVar(&mockAddr, "addr", "127.0.0.1:8090", "Listen address for sse and http")
	cmd.Flags().BoolVar(&mockWatch, "watch", false, "Reload tools when the config file changes")
	cmd.MarkFlagsMutuallyExclusive("config", "fixture")

	return cmd
}

func runMockServer(cmd *cobra.Command, args []string) error {
	s, err := newMockServer()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if mockWatch {
		if mockConfigPath == "" {
			return api.NewConfigurationError("watch", "--watch requires --config")
		}
		go func() {
			if err := mock.Watch(ctx, mockConfigPath, s); err != nil {
				logging.Warn("MockServer", "Config watch stopped: %v", err)
			}
		}()
	}

	var transport mock.HTTPTransportType
	switch mockTransport {
	case "stdio":
		return s.ServeStdio()
	case "sse":
		transport = mock.HTTPTransportSSE
	case "http", "streamable-http":
		transport = mock.HTTPTransportStreamableHTTP
	default:
		return api.NewConfigurationError("transport", "unsupported transport %q (supported: stdio, sse, http)", mockTransport)
	}

	httpServer := mock.NewHTTPServer(s, transport)
	if _, err := httpServer.Start(mockAddr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Mock MCP server '%s' listening on %s\n", s.Name(), httpServer.Endpoint())

	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		return err
	}
	return httpServer.Err()
}

func newMockServer() (*mock.Server, error) {
	if mockConfigPath != "" {
		s, err := mock.NewServerFromFile(mockConfigPath)
		if err != nil {
			return nil, api.NewConfigurationError("config", "%v", err)
		}
		return s, nil
	}

	cfg, err := mock.Fixture(mockFixture)
	if err != nil {
		return nil, api.NewConfigurationError("fixture", "%v", err)
	}
	return mock.NewServer(cfg)
}
