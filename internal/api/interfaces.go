package api

// ParameterSource resolves run parameters. Values may differ per input item;
// fallback is returned when the parameter is not set for that item.
type ParameterSource interface {
	Get(name string, itemIndex int, fallback any) any
}

// CredentialSource returns the stored connection settings for a connection
// kind: command, args, environments, url, headers, messagesPostEndpoint and timeout.
// A kind with no stored settings yields an empty mapping.
type CredentialSource interface {
	Get(kind ConnectionKind) (map[string]any, error)
}

// Logger is the diagnostic sink used by the execution core. Implementations
// may drop everything; nothing in the core depends on what is logged.
type Logger interface {
	Debug(messageFmt string, args ...interface{})
	Warn(messageFmt string, args ...interface{})
	Error(messageFmt string, args ...interface{})
}

// FailureTolerance reports whether per-item errors are contained in the
// item's result instead of aborting the run.
type FailureTolerance interface {
	Enabled() bool
}

// ContinueOnFail is a FailureTolerance backed by a plain bool.
type ContinueOnFail bool

// Enabled implements FailureTolerance.
func (c ContinueOnFail) Enabled() bool {
	return bool(c)
}

// NopLogger discards every entry.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
