// Package headers parses and merges the NAME=VALUE header text stored in
// connection credentials and passed as run parameters.
package headers

import "strings"

// Parse converts newline-delimited NAME=VALUE text into a header mapping.
//
// The first '=' on a line separates name from value, so values may contain
// further '=' characters. Lines without '=', lines starting with '=', and
// lines whose name is blank after trimming are skipped. Name and value are
// trimmed. A later line overrides an earlier line with the same name.
func Parse(text string) map[string]string {
	result := make(map[string]string)
	if text == "" {
		return result
	}

	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if name == "" {
			continue
		}
		result[name] = strings.TrimSpace(line[idx+1:])
	}

	return result
}

// Merge returns the union of base and overrides. Where both define a
// name, the value from overrides wins. Neither input is modified.
func Merge(base, overrides map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}
