package config

import (
	"sort"
	"strings"

	"mcpnode/internal/headers"
)

// BuildEnvironment computes the environment of a stdio server process.
//
// It starts from PATH alone, taken from the snapshot, then applies the
// NAME=VALUE lines of overrides, then every snapshot variable whose name
// starts with prefix and whose value is non-empty, with the prefix removed.
// The snapshot uses the os.Environ format. Nothing is read from the
// running process.
func BuildEnvironment(snapshot []string, overrides string, prefix string) map[string]string {
	env := map[string]string{
		"PATH": lookup(snapshot, "PATH"),
	}

	for name, value := range headers.Parse(overrides) {
		env[name] = value
	}

	if prefix == "" {
		return env
	}
	for _, kv := range snapshot {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(name, prefix) {
			continue
		}
		if stripped := strings.TrimPrefix(name, prefix); stripped != "" {
			env[stripped] = value
		}
	}

	return env
}

// EnvironList renders an environment mapping as sorted NAME=VALUE pairs.
func EnvironList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func lookup(snapshot []string, name string) string {
	value := ""
	for _, kv := range snapshot {
		if k, v, ok := strings.Cut(kv, "="); ok && k == name {
			value = v
		}
	}
	return value
}
