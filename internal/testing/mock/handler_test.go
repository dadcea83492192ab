package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolHandler_HandleCall(t *testing.T) {
	cfg := ToolConfig{
		Name: "weather",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"city":  map[string]interface{}{"type": "string"},
				"units": map[string]interface{}{"type": "string", "default": "metric"},
			},
		},
		Responses: []ToolResponse{
			{Condition: map[string]interface{}{"city": "Atlantis"}, Error: "unknown city {{ .city }}"},
			{Condition: map[string]interface{}{"city": "Oslo"}, Response: map[string]interface{}{"city": "{{ .city }}", "temp": 3, "units": "{{ .units }}"}},
			{Condition: map[string]interface{}{"city": "Mars"}, Response: "no weather", IsError: true},
			{Response: "{{ .city | upper }} is sunny"},
		},
	}
	h := NewToolHandler(cfg)

	tests := []struct {
		name        string
		args        map[string]interface{}
		want        interface{}
		wantIsError bool
		wantErr     string
	}{
		{
			name: "fallback response with sprig function",
			args: map[string]interface{}{"city": "Rome"},
			want: "ROME is sunny",
		},
		{
			name: "structured response with defaults",
			args: map[string]interface{}{"city": "Oslo"},
			want: map[string]interface{}{"city": "Oslo", "temp": 3, "units": "metric"},
		},
		{
			name:    "error response",
			args:    map[string]interface{}{"city": "Atlantis"},
			wantErr: "unknown city Atlantis",
		},
		{
			name:        "tool level error",
			args:        map[string]interface{}{"city": "Mars"},
			want:        "no weather",
			wantIsError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isError, err := h.HandleCall(context.Background(), tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantIsError, isError)
		})
	}
}

func TestToolHandler_EchoWithoutResponses(t *testing.T) {
	h := NewToolHandler(ToolConfig{Name: "echo"})

	got, isError, err := h.HandleCall(context.Background(), map[string]interface{}{"msg": "hi"})
	require.NoError(t, err)
	assert.False(t, isError)
	assert.Equal(t, map[string]interface{}{"msg": "hi"}, got)
	assert.Equal(t, `{"msg":"hi"}`, resultText(got))
}

func TestToolHandler_DelayHonoursContext(t *testing.T) {
	h := NewToolHandler(ToolConfig{
		Name:      "slow",
		Responses: []ToolResponse{{Response: "done", Delay: "10s"}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := h.HandleCall(ctx, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(1, float64(1)))
	assert.True(t, valuesEqual(true, "true"))
	assert.True(t, valuesEqual("a", "a"))
	assert.False(t, valuesEqual("a", "b"))
}

func TestResultText(t *testing.T) {
	assert.Equal(t, "", resultText(nil))
	assert.Equal(t, "plain", resultText("plain"))
	assert.Equal(t, "[1,2]", resultText([]interface{}{1, 2}))
	assert.Equal(t, "42", resultText(42))
}
