// Package toolset exposes the tools of an MCP server as function-calling
// tools: each carries the advertised schema, an argument validator, the
// Anthropic tool definition and a Call bound to the session.
package toolset
