package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	app := config.AppConfig{Name: "pdc-service", Env: "test", Version: "dev"}

	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"}, app)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "chatty", Format: "console"}, app)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}
