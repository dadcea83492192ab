// Package invoker executes tool calls against an open MCP session.
package invoker
