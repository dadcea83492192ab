package config

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/headers"
)

// ConnectionInput gathers everything needed to resolve a ConnectionSpec.
type ConnectionInput struct {
	Kind api.ConnectionKind

	// Credentials is the stored mapping for Kind
	Credentials map[string]any

	// URIOverride replaces the stored URL for sse and http when non-empty
	URIOverride string

	// HeadersText holds extra NAME=VALUE headers for this run; they win over stored headers
	HeadersText string

	// Environ is the process environment snapshot in os.Environ format
	Environ []string
}

// BuildConnectionSpec validates the input and produces the immutable
// connection description for one run.
func BuildConnectionSpec(in ConnectionInput) (api.ConnectionSpec, error) {
	switch in.Kind {
	case api.ConnectionKindStdio:
		return buildStdioSpec(in)
	case api.ConnectionKindSSE, api.ConnectionKindHTTP:
		return buildRemoteSpec(in)
	default:
		return api.ConnectionSpec{}, api.NewConfigurationError("connectionType", "unsupported connection type %q", in.Kind)
	}
}

func buildStdioSpec(in ConnectionInput) (api.ConnectionSpec, error) {
	command := strings.TrimSpace(stringValue(in.Credentials["command"]))
	if command == "" {
		return api.ConnectionSpec{}, api.NewConfigurationError("command", "no command configured for stdio connection")
	}

	timeout, err := timeoutValue(in.Credentials, DefaultTimeoutMs, "timeout")
	if err != nil {
		return api.ConnectionSpec{}, err
	}

	return api.ConnectionSpec{
		Kind:    api.ConnectionKindStdio,
		Command: command,
		Args:    argsValue(in.Credentials["args"]),
		Env:     BuildEnvironment(in.Environ, stringValue(in.Credentials["environments"]), EnvOverridePrefix),
		Timeout: timeout,
	}, nil
}

func buildRemoteSpec(in ConnectionInput) (api.ConnectionSpec, error) {
	rawURL := strings.TrimSpace(in.URIOverride)
	field := "uriOverride"
	if rawURL == "" {
		field = "url"
		rawURL = strings.TrimSpace(firstString(in.Credentials, "url", urlAlias(in.Kind)))
	}
	if rawURL == "" {
		return api.ConnectionSpec{}, api.NewConfigurationError("url", "no URL configured for %s connection", in.Kind)
	}
	if err := validateAbsoluteURL(field, rawURL); err != nil {
		return api.ConnectionSpec{}, err
	}

	endpoint := strings.TrimSpace(stringValue(in.Credentials["messagesPostEndpoint"]))
	if endpoint != "" {
		if err := validateAbsoluteURL("messagesPostEndpoint", endpoint); err != nil {
			return api.ConnectionSpec{}, err
		}
	}

	timeout, err := timeoutValue(in.Credentials, DefaultRemoteTimeoutMs, "timeout", timeoutAlias(in.Kind))
	if err != nil {
		return api.ConnectionSpec{}, err
	}

	return api.ConnectionSpec{
		Kind:             in.Kind,
		URL:              rawURL,
		MessagesEndpoint: endpoint,
		Headers:          headers.Merge(headers.Parse(stringValue(in.Credentials["headers"])), headers.Parse(in.HeadersText)),
		Timeout:          timeout,
	}, nil
}

func urlAlias(kind api.ConnectionKind) string {
	if kind == api.ConnectionKindSSE {
		return "sseUrl"
	}
	return "httpStreamUrl"
}

func timeoutAlias(kind api.ConnectionKind) string {
	if kind == api.ConnectionKindSSE {
		return "sseTimeout"
	}
	return "httpTimeout"
}

func validateAbsoluteURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &api.ConfigurationError{Field: field, Message: fmt.Sprintf("%q is not a valid URL", raw), Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return api.NewConfigurationError(field, "%q is not an absolute URL", raw)
	}
	return nil
}

// argsValue accepts either a list or a single string. A string is split on
// single spaces; quoting is not interpreted.
func argsValue(v any) []string {
	switch args := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), args...)
	case []any:
		out := make([]string, 0, len(args))
		for _, a := range args {
			out = append(out, stringValue(a))
		}
		return out
	default:
		s := stringValue(v)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return strings.Split(s, " ")
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// timeoutValue reads the first present key as milliseconds. Absent or
// empty values fall back to defaultMs.
func timeoutValue(m map[string]any, defaultMs int64, keys ...string) (time.Duration, error) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil || v == "" {
			continue
		}
		ms, ok := numberValue(v)
		if !ok || ms <= 0 {
			return 0, api.NewConfigurationError(k, "timeout must be a positive number of milliseconds, got %v", v)
		}
		return millis(int64(ms)), nil
	}
	return millis(defaultMs), nil
}

// numberValue converts JSON, YAML and flag values to a finite float.
func numberValue(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
