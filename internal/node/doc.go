// Package node runs one MCP client execution: it resolves the connection
// from parameters and credentials, opens a single session, performs the
// selected operation for every input item in batches and closes the
// session on every path out.
//
// Supported operations are listResources, listResourceTemplates,
// readResource, listTools, executeTool, listPrompts and getPrompt. Each item
// result payload is a JSON object keyed by the operation's output name.
package node
