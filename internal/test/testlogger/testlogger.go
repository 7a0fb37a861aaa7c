// Package testlogger builds loggers for tests.
package testlogger

import (
	"os"
	"testing"

	"github.com/zutxo/sigma/common/log"
)

// Level is the debug level when log.DebugEnv is "DEBUG", info otherwise.
func Level(t testing.TB) int {
	logLevel := log.InfoLevel
	if os.Getenv(log.DebugEnv) == "DEBUG" {
		t.Log("Enabling DebugLevel logs")
		logLevel = log.DebugLevel
	}

	return logLevel
}

// New returns a JSON logger on stderr tagged with the test name.
func New(t testing.TB) log.Logger {
	return log.New(nil, Level(t), true).
		With("testName", t.Name())
}
