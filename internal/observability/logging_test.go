package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/worldseed/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_ConsoleWithFields(t *testing.T) {
	w := config.WorldConfig{Module: "dgr-harms-way", Store: config.StoreMemory}
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}, WorldFields(w)...)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"})
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewLogger_LevelEnabled(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(config.LoggingConfig{Level: level, Format: "json"})
		require.NoError(t, err, "level %q should be valid", level)
		assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel), "error must be enabled at %q", level)
	}
}

func TestWorldFields(t *testing.T) {
	fields := WorldFields(config.WorldConfig{Module: "m", Store: "postgres"})
	require.Len(t, fields, 2)
	assert.Equal(t, "module", fields[0].Key)
	assert.Equal(t, "m", fields[0].String)
	assert.Equal(t, "store", fields[1].Key)
}
