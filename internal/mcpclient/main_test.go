package mcpclient

import (
	"os"
	"testing"

	"mcpnode/internal/testing/mock"
)

func TestMain(m *testing.M) {
	mock.RunHelperIfRequested()
	os.Exit(m.Run())
}
