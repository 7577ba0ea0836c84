// Package logtest provides loggers for tests.
package logtest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/logger"
)

// New returns a Logger that writes through t.Log at debug level.
func New(t testing.TB) logger.Logger {
	return logger.FromZap(zaptest.NewLogger(t))
}
