package schema

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema renders the validator as a JSON Schema object. The result
// describes what Validate accepts, which is looser than the server's schema
// for nested objects.
func (v *Validator) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       string(TypeObject),
		Properties: v.properties(),
		Required:   v.RequiredNames(),
	}
	return s
}

func (v *Validator) properties() map[string]*jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(v.Fields))
	for _, f := range v.Fields {
		props[f.Name] = f.Node.jsonSchema()
	}
	return props
}

func (n Node) jsonSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Description: n.Description}
	switch n.Type {
	case TypeAny:
	case TypeObject:
		s.Type = string(TypeObject)
		s.AdditionalProperties = &jsonschema.Schema{}
	case TypeArray:
		s.Type = string(TypeArray)
		s.Items = n.Items.jsonSchema()
	default:
		s.Type = string(n.Type)
	}
	return s
}

// ToolParam renders the validator as an Anthropic tool definition for
// function calling.
func (v *Validator) ToolParam(description string) anthropic.ToolUnionParam {
	tool := &anthropic.ToolParam{
		Name: v.Tool,
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: v.properties(),
			Required:   v.RequiredNames(),
		},
	}
	if description != "" {
		tool.Description = param.NewOpt(description)
	}
	return anthropic.ToolUnionParam{OfTool: tool}
}
