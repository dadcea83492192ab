package mcpclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/config"
	"mcpnode/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// stdioGracePeriod is how long a server may take to exit after its stdin
// closes before it is killed.
const stdioGracePeriod = 2 * time.Second

// StdioTransport launches an MCP server as a subprocess.
// The child sees exactly env; nothing else is inherited from this process.
type StdioTransport struct {
	command string
	args    []string
	env     map[string]string
}

// NewStdioTransport creates a stdio transport for the given command line and environment.
func NewStdioTransport(command string, args []string, env map[string]string) *StdioTransport {
	if env == nil {
		env = make(map[string]string)
	}
	return &StdioTransport{
		command: command,
		args:    args,
		env:     env,
	}
}

func (t *StdioTransport) Kind() api.ConnectionKind { return api.ConnectionKindStdio }

func (t *StdioTransport) Target() string {
	return strings.TrimSpace(t.command + " " + strings.Join(t.args, " "))
}

// Connect starts the subprocess and speaks the protocol over its pipes.
// onLost is called once the process exits. When ctx is done the process
// gets stdioGracePeriod to exit on its own and is then killed.
func (t *StdioTransport) Connect(ctx context.Context, onLost func(error)) (*client.Client, error) {
	logging.Debug("StdioTransport", "Starting %s %v with %d environment variables", t.command, t.args, len(t.env))

	cmd := exec.Command(t.command, t.args...)
	cmd.Env = config.EnvironList(t.env)

	// Plain pipes rather than cmd.StdoutPipe: Wait must not close the read
	// ends while the last response is still being read.
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW)
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW)
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdinR, stdoutW, stderrW

	if err := cmd.Start(); err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW, stderrR, stderrW)
		return nil, fmt.Errorf("failed to start %s: %w", t.command, err)
	}
	closeAll(stdinR, stdoutW, stderrW)

	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		close(exited)
		if err != nil {
			onLost(fmt.Errorf("server process exited: %w", err))
			return
		}
		onLost(errors.New("server process exited"))
	}()
	go func() {
		select {
		case <-exited:
		case <-ctx.Done():
			select {
			case <-exited:
			case <-time.After(stdioGracePeriod):
				logging.Warn("StdioTransport", "%s did not exit after its input closed, killing it", t.command)
				_ = cmd.Process.Kill()
			}
		}
	}()
	go drainStderr(t.command, stderrR)

	stdio := transport.NewIO(stdoutR, stdinW, stderrR)
	transport.WithCommandLogger(transportLogger{subsystem: "StdioTransport"})(stdio)

	mcpClient := client.NewClient(stdio)
	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to start stdio transport: %w", err)
	}
	return mcpClient, nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// drainStderr forwards the server's stderr to debug logs so a chatty
// server never blocks on a full pipe.
func drainStderr(command string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logging.Debug("StdioTransport", "[%s stderr] %s", command, scanner.Text())
	}
}
