package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"mcpnode/internal/api"
)

// Type is the tag of one validator node.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeAny     Type = "any"
)

// Node validates one value.
type Node struct {
	Type        Type
	Description string
	// Items is the element validator of an array. It is never nil for TypeArray.
	Items *Node
}

// Field is one top-level parameter of a tool.
type Field struct {
	Name     string
	Node     Node
	Required bool
}

// Validator is the typed form of a tool's parameter schema.
type Validator struct {
	Tool   string
	Fields []Field
}

// Adapt builds the validator for the named tool's input schema.
// A nil schema or one without properties accepts an empty parameter object.
func Adapt(tool string, inputSchema map[string]any) *Validator {
	v := &Validator{Tool: tool}

	properties, _ := inputSchema["properties"].(map[string]any)
	if len(properties) == 0 {
		return v
	}

	required := requiredSet(inputSchema["required"])

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, _ := properties[name].(map[string]any)
		v.Fields = append(v.Fields, Field{
			Name:     name,
			Node:     adaptProperty(prop),
			Required: required[name],
		})
	}
	return v
}

func adaptProperty(prop map[string]any) Node {
	n := Node{Type: typeOf(prop)}
	if desc, ok := prop["description"].(string); ok {
		n.Description = desc
	}

	if n.Type == TypeArray {
		items, _ := prop["items"].(map[string]any)
		elem := Node{Type: TypeAny}
		switch t := typeOf(items); t {
		case TypeString, TypeNumber, TypeBoolean:
			elem.Type = t
		}
		n.Items = &elem
	}
	return n
}

func typeOf(prop map[string]any) Type {
	t, _ := prop["type"].(string)
	switch Type(t) {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return Type(t)
	default:
		return TypeAny
	}
}

func requiredSet(v any) map[string]bool {
	set := map[string]bool{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				set[s] = true
			}
		}
	case []string:
		for _, s := range list {
			set[s] = true
		}
	}
	return set
}

// RequiredNames returns the names of the mandatory fields.
func (v *Validator) RequiredNames() []string {
	var names []string
	for _, f := range v.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Validate checks args against the validator. Unknown keys are allowed.
// A nil value counts as absent.
func (v *Validator) Validate(args map[string]any) error {
	for _, f := range v.Fields {
		value, ok := args[f.Name]
		if !ok || value == nil {
			if f.Required {
				return v.invalid("missing required parameter '%s'", f.Name)
			}
			continue
		}
		if err := f.Node.check(value); err != nil {
			return v.invalid("parameter '%s' %s", f.Name, err)
		}
	}
	return nil
}

func (v *Validator) invalid(format string, args ...any) error {
	return &api.InvalidArgumentsError{Tool: v.Tool, Reason: fmt.Sprintf(format, args...)}
}

func (n Node) check(value any) error {
	switch n.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return mismatch("a string", value)
		}
	case TypeNumber:
		if _, ok := toFloat(value); !ok {
			return mismatch("a number", value)
		}
	case TypeInteger:
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return mismatch("an integer", value)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return mismatch("a boolean", value)
		}
	case TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return mismatch("an object", value)
		}
	case TypeArray:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return mismatch("an array", value)
		}
		for i := 0; i < rv.Len(); i++ {
			if err := n.Items.check(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d %w", i, err)
			}
		}
	}
	return nil
}

func mismatch(want string, got any) error {
	return fmt.Errorf("must be %s, got %T", want, got)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
