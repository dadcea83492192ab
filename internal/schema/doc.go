// Package schema converts a tool's JSON Schema input definition into a
// typed validator for function calling.
//
// Adapt performs an explicit case analysis over the schema type tags:
//
//	string   -> string
//	number   -> number
//	integer  -> integral number
//	boolean  -> boolean
//	array    -> typed array for string, number or boolean items, open array otherwise
//	object   -> open string-keyed mapping
//	other    -> any value
//
// Properties missing from "required" are optional. Descriptions are kept on
// every node. The validator is an extra artifact: listings always relay the
// server's schema unchanged.
//
// Strict compiles the raw schema with jsonschema-go for full-depth checks.
// ForTool prefers it and falls back to the typed validator.
package schema
