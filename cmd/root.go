package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mcpnode/internal/api"
	"mcpnode/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (invalid arguments, I/O failures).
	ExitCodeError = 1
	// ExitCodeConfiguration indicates bad or missing connection parameters.
	ExitCodeConfiguration = 2
	// ExitCodeConnection indicates the MCP server could not be reached or the handshake failed.
	ExitCodeConnection = 3
	// ExitCodeRemote indicates a query or tool call against the server failed.
	ExitCodeRemote = 4
)

var logLevel string

// rootCmd represents the base command for the mcpnode application.
var rootCmd = &cobra.Command{
	Use:   "mcpnode",
	Short: "Run operations against Model Context Protocol servers",
	Long: `mcpnode connects to an MCP server over stdio, SSE or streamable HTTP
and lists or invokes its tools, prompts and resources. Input items are
processed in batches over a single session.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return api.NewConfigurationError("log-level", "%v", err)
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion sets the version for the root command.
// It is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// Interrupts cancel the running command through its context.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpnode version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var cfgErr *api.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfiguration
	}

	var connErr *api.ConnectionError
	if errors.As(err, &connErr) {
		return ExitCodeConnection
	}

	if api.IsRemoteError(err) || api.IsToolNotFound(err) || api.IsToolExecutionError(err) ||
		api.IsInvalidArguments(err) || api.IsNoCapability(err) {
		return ExitCodeRemote
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newMockServerCmd())
}

// errorf prints a user-facing failure line to the command's error stream.
func errorf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
