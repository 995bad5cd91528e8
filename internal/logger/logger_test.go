package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zap.InfoLevel, parseLevel(""))
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose"))
}

func TestNew(t *testing.T) {
	log, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.ErrorLevel))
}
