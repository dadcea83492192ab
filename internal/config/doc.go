// Package config resolves the settings of one mcpnode run.
//
// Stored connection settings live in a YAML credentials file, by default
// ~/.config/mcpnode/credentials.yaml, with one mapping per connection kind:
//
//	stdio:
//	  command: npx
//	  args: -y @modelcontextprotocol/server-everything
//	  environments: |
//	    API_KEY=secret
//	sse:
//	  url: https://example.com/sse
//	  headers: |
//	    Authorization=Bearer token
//	  messagesPostEndpoint: https://example.com/messages
//	  timeout: 60000
//	http:
//	  url: https://example.com/mcp
//
// BuildConnectionSpec turns those settings, plus per-run parameters, into an
// api.ConnectionSpec. Invalid input is reported as api.ConfigurationError.
//
// The stdio child environment is computed by BuildEnvironment from an
// explicit snapshot of the process environment: PATH, then the stored
// environments lines, then every MCP_-prefixed variable with the prefix removed.
//
// ResolveBatch computes the effective batch size and inter-batch delay.
package config
