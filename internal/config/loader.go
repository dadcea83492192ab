package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mcpnode/internal/api"
	"mcpnode/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DefaultCredentialsPath returns ~/.config/mcpnode/credentials.yaml.
func DefaultCredentialsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, credentialsFileName), nil
}

// LoadCredentials reads a credentials file. A missing file yields empty
// credentials so that every connection kind must then be configured
// through parameters or fail with a ConfigurationError.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No credentials file found at %s, using empty credentials", path)
			return creds, nil
		}
		return nil, fmt.Errorf("error reading credentials from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("error loading credentials from %s: %w", path, err)
	}

	logging.Debug("ConfigLoader", "Loaded credentials from %s", path)
	return creds, nil
}

// Credentials holds the stored connection settings per connection kind.
type Credentials struct {
	Stdio map[string]any `yaml:"stdio,omitempty"`
	SSE   map[string]any `yaml:"sse,omitempty"`
	HTTP  map[string]any `yaml:"http,omitempty"`
}

var _ api.CredentialSource = (*Credentials)(nil)

// Get implements api.CredentialSource. The returned mapping is a copy.
func (c *Credentials) Get(kind api.ConnectionKind) (map[string]any, error) {
	var src map[string]any
	switch kind {
	case api.ConnectionKindStdio:
		src = c.Stdio
	case api.ConnectionKindSSE:
		src = c.SSE
	case api.ConnectionKindHTTP:
		src = c.HTTP
	default:
		return nil, api.NewConfigurationError("connectionType", "no credentials for connection type %q", kind)
	}

	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}
