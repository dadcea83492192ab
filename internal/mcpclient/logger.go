package mcpclient

import (
	"mcpnode/pkg/logging"

	"github.com/mark3labs/mcp-go/util"
)

// transportLogger routes mcp-go's internal transport logging into pkg/logging.
type transportLogger struct {
	subsystem string
}

var _ util.Logger = transportLogger{}

func (l transportLogger) Infof(format string, v ...any) {
	logging.Debug(l.subsystem, format, v...)
}

func (l transportLogger) Errorf(format string, v ...any) {
	logging.Warn(l.subsystem, format, v...)
}
