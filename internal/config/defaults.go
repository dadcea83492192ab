package config

import "time"

const (
	userConfigDir       = ".config/mcpnode"
	credentialsFileName = "credentials.yaml"

	// EnvOverridePrefix marks process environment variables that are passed
	// to stdio servers with the prefix removed.
	EnvOverridePrefix = "MCP_"
)

// Batch limits, all in items or milliseconds.
const (
	DefaultItemsPerBatch = 50
	MinItemsPerBatch     = 1
	MaxItemsPerBatch     = 1000

	DefaultBatchIntervalMs = 0
	MinBatchIntervalMs     = 0
	MaxBatchIntervalMs     = 60000
)

// DefaultRemoteTimeoutMs is the timeout applied to SSE and HTTP connections
// whose credentials do not set one.
const DefaultRemoteTimeoutMs = 60000

// DefaultTimeoutMs is the timeout applied when no transport-specific value exists.
const DefaultTimeoutMs = 600000

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
