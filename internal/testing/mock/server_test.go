package mock

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
tools:
  - name: echo
    description: Echo a message
    input_schema:
      type: object
      properties:
        msg:
          type: string
      required: [msg]
    responses:
      - response: "{{ .msg }}"
prompts:
  - name: greet
    description: Greeting
    arguments:
      - name: who
        required: true
    template: "Hello {{ .who }}"
resources:
  - uri: mem://readme
    name: readme
    mime_type: text/plain
    text: read me
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	require.Len(t, cfg.Tools, 1)
	assert.Equal(t, "echo", cfg.Tools[0].Name)
	assert.Equal(t, []interface{}{"msg"}, cfg.Tools[0].InputSchema["required"])
	require.Len(t, cfg.Prompts, 1)
	assert.True(t, cfg.Prompts[0].Arguments[0].Required)
	require.Len(t, cfg.Resources, 1)
	assert.Equal(t, "text/plain", cfg.Resources[0].MIMEType)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read mock config file")

	path := writeConfig(t, t.TempDir(), "tools: [unclosed")
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mock config file")
}

func TestNewServer(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig)

	s, err := NewServerFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name())
	assert.Equal(t, []string{"echo"}, s.ToolNames())
	assert.NotNil(t, s.MCPServer())
}

func TestReloadTools(t *testing.T) {
	s, err := NewServer(Config{Tools: []ToolConfig{{Name: "a"}, {Name: "b"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.ToolNames())

	require.NoError(t, s.ReloadTools(Config{Tools: []ToolConfig{{Name: "c"}}}))
	assert.Equal(t, []string{"c"}, s.ToolNames())

	require.NoError(t, s.ReloadTools(Config{}))
	assert.Empty(t, s.ToolNames())
}

func TestWatchReloadsTools(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleConfig)

	s, err := NewServerFromFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, s) }()

	updated := "tools:\n  - name: echo\n  - name: add\n"
	assert.Eventually(t, func() bool {
		// Rewrite until the watcher has registered and picked up the change.
		_ = os.WriteFile(path, []byte(updated), 0o600)
		names := s.ToolNames()
		return len(names) == 2 && names[0] == "add" && names[1] == "echo"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
