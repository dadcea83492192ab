// Package capability lists and fetches what an MCP server offers: tools,
// prompts, resources and resource templates.
//
// Servers answer listings either as an ordered array or as an object keyed
// by name. Both shapes are normalized on receipt into one ordered slice, with
// keyed objects contributing their values in document order. Listings follow
// nextCursor until the server stops returning one.
//
// Tool schemas are relayed exactly as received. See package schema for the
// typed form used in function calling.
package capability
