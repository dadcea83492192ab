package schema

import (
	"encoding/json"
	"testing"

	"mcpnode/internal/api"
	"mcpnode/internal/testing/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictChecksNestedProperties(t *testing.T) {
	strict, err := Compile("configure", mock.NestedSchema())
	require.NoError(t, err)

	valid := map[string]any{
		"name":     "p",
		"settings": map[string]any{"display": map[string]any{"darkMode": true}},
	}
	assert.NoError(t, strict.Validate(valid))

	missingNested := map[string]any{
		"name":     "p",
		"settings": map[string]any{"display": map[string]any{}},
	}
	err = strict.Validate(missingNested)
	require.Error(t, err)
	assert.True(t, api.IsInvalidArguments(err))

	// The typed validator leaves nested objects open.
	assert.NoError(t, Adapt("configure", mock.NestedSchema()).Validate(missingNested))

	wrongNestedType := map[string]any{
		"name":     "p",
		"settings": map[string]any{"display": map[string]any{"darkMode": "yes"}},
	}
	assert.Error(t, strict.Validate(wrongNestedType))
}

func TestStrictAcceptsNumberLiterals(t *testing.T) {
	strict, err := Compile("calc", map[string]any{
		"type":       "object",
		"properties": map[string]any{"n": map[string]any{"type": "integer"}},
	})
	require.NoError(t, err)

	assert.NoError(t, strict.Validate(map[string]any{"n": json.Number("42")}))
	assert.Error(t, strict.Validate(map[string]any{"n": json.Number("4.2")}))
}

func TestStrictNilSchema(t *testing.T) {
	strict, err := Compile("anything", nil)
	require.NoError(t, err)
	assert.NoError(t, strict.Validate(nil))
	assert.NoError(t, strict.Validate(map[string]any{"a": 1}))
}

func TestForToolFallsBackToTypedValidator(t *testing.T) {
	v := ForTool("echo", mock.EchoSchema(), nil)
	_, isStrict := v.(*Strict)
	assert.True(t, isStrict)

	broken := map[string]any{
		"type":       "object",
		"properties": map[string]any{"msg": map[string]any{"type": "string", "minLength": "three"}},
		"required":   []any{"msg"},
	}
	v = ForTool("broken", broken, api.NopLogger{})
	typed, ok := v.(*Validator)
	require.True(t, ok)
	assert.Equal(t, "broken", typed.Tool)

	err := v.Validate(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameter 'msg'")
}
