package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"mcpnode/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	data := []byte(`
- json: {msg: first}
  params:
    toolParameters: '{"msg":"first"}'
- msg: second
- params: {toolName: sum}
`)

	items, params, err := parseItems(data)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Len(t, params, 3)

	assert.Equal(t, map[string]any{"msg": "first"}, items[0].JSON)
	assert.Equal(t, map[string]any{"toolParameters": `{"msg":"first"}`}, params[0])

	assert.Equal(t, map[string]any{"msg": "second"}, items[1].JSON)
	assert.Nil(t, params[1])

	assert.Equal(t, map[string]any{}, items[2].JSON)
	assert.Equal(t, map[string]any{"toolName": "sum"}, params[2])
}

func TestParseItemsJSON(t *testing.T) {
	items, _, err := parseItems([]byte(`[{"json": {"n": 1}}, {"json": {"n": 2}}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[1].JSON["n"])
}

func TestParseItemsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not a list", data: `{"json": {}}`},
		{name: "params not an object", data: `[{"params": "x"}]`},
		{name: "json not an object", data: `[{"json": [1, 2]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseItems([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, api.IsConfigurationError(err))
		})
	}
}

func TestLoadItemsMissingFile(t *testing.T) {
	_, _, err := loadItems(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
