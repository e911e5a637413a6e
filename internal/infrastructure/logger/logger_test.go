package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iristrack/core/internal/infrastructure/config"
)

func TestNewBuildsConsoleAndJSONLoggers(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := New(config.LoggerConfig{Level: "info", Format: format})
		require.NoError(t, err)
		require.NotNil(t, l)
		require.NoError(t, l.Close())
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestDerivedLoggersShareTheCore(t *testing.T) {
	l := NewNop()

	derived := l.
		WithComponent("session").
		WithUserID("user-1").
		WithError(errors.New("boom")).
		WithFields("extra", 1)

	require.NotNil(t, derived)
	assert.NotSame(t, l, derived)

	// Structured helpers log through the same sugared core without panicking.
	derived.LogAuthEvent("sign_in", "user-1")
	derived.LogHTTPRequest("GET", "/health", "127.0.0.1", 200, 0.42)
}
