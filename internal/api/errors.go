package api

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports bad or missing connection parameters.
// It is raised before any transport is opened and is never retried.
type ConfigurationError struct {
	// Field names the offending parameter or credential key
	Field string

	// Message describes what is wrong with the field
	Message string

	// Err is an optional underlying cause (for example a URL parse error)
	Err error
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ConfigurationError for the given field.
//
// Args:
//   - field: The parameter or credential key that is invalid
//   - format: A printf-style message describing the problem
//
// Returns:
//   - *ConfigurationError: A new ConfigurationError instance
//
// Example:
//
//	return api.NewConfigurationError("command", "no command configured for stdio connection")
func NewConfigurationError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsConfigurationError checks if an error is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// ConnectionError reports that a transport could not be opened or the
// protocol handshake did not complete. The transport has already been torn
// down when this error reaches the caller.
type ConnectionError struct {
	// Kind is the connection kind that failed (stdio, sse, http)
	Kind ConnectionKind

	// Target is the command or URL the connection was made to
	Target string

	// Err is the underlying transport or handshake failure
	Err error
}

// Error implements the error interface for ConnectionError.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to MCP server (%s %s): %v", e.Kind, e.Target, e.Err)
}

// Unwrap returns the underlying transport or handshake failure.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks if an error is or wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// RemoteError reports that a query against an already-open session failed.
type RemoteError struct {
	// Operation is the protocol operation that failed (e.g. "resources/read")
	Operation string

	// Target names the resource, prompt, or listing the operation addressed
	Target string

	// Err is the underlying protocol or transport failure
	Err error
}

// Error implements the error interface for RemoteError.
func (e *RemoteError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %q failed: %v", e.Operation, e.Target, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying protocol or transport failure.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemoteError checks if an error is or wraps a RemoteError.
func IsRemoteError(err error) bool {
	var target *RemoteError
	return errors.As(err, &target)
}

// ToolNotFoundError reports that a requested tool is not in the server's
// current tool listing. Available holds the names that were listed.
type ToolNotFoundError struct {
	Tool      string
	Available []string
}

// Error implements the error interface for ToolNotFoundError.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("Tool '%s' does not exist. Available tools: %s", e.Tool, strings.Join(e.Available, ", "))
}

// IsToolNotFound checks if an error is or wraps a ToolNotFoundError.
func IsToolNotFound(err error) bool {
	var target *ToolNotFoundError
	return errors.As(err, &target)
}

// InvalidArgumentsError reports tool arguments that are not a JSON object
// or that fail validation against the tool's parameter schema.
type InvalidArgumentsError struct {
	// Tool is the tool the arguments were meant for, if known
	Tool string

	// Reason describes the violation
	Reason string

	// Err is an optional underlying cause (for example a JSON syntax error)
	Err error
}

// Error implements the error interface for InvalidArgumentsError.
func (e *InvalidArgumentsError) Error() string {
	msg := e.Reason
	if e.Tool != "" {
		msg = fmt.Sprintf("invalid arguments for tool '%s': %s", e.Tool, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *InvalidArgumentsError) Unwrap() error {
	return e.Err
}

// IsInvalidArguments checks if an error is or wraps an InvalidArgumentsError.
func IsInvalidArguments(err error) bool {
	var target *InvalidArgumentsError
	return errors.As(err, &target)
}

// ToolExecutionError reports that the remote call of an existing tool failed.
type ToolExecutionError struct {
	Tool string
	Err  error
}

// Error implements the error interface for ToolExecutionError.
func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("failed to execute tool '%s': %v", e.Tool, e.Err)
}

// Unwrap returns the remote failure.
func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// IsToolExecutionError checks if an error is or wraps a ToolExecutionError.
func IsToolExecutionError(err error) bool {
	var target *ToolExecutionError
	return errors.As(err, &target)
}

// NoCapabilityError reports that the server advertised nothing for a
// capability the operation required (e.g. zero tools on a tool listing).
type NoCapabilityError struct {
	Capability string
}

// Error implements the error interface for NoCapabilityError.
func (e *NoCapabilityError) Error() string {
	return fmt.Sprintf("No %s found from MCP client", e.Capability)
}

// IsNoCapability checks if an error is or wraps a NoCapabilityError.
func IsNoCapability(err error) bool {
	var target *NoCapabilityError
	return errors.As(err, &target)
}
