package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
)

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_TextFormat(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "debug", Format: "text"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "verbose"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	l, err := NewLogger(config.LogConfig{Level: "info", Output: path})
	require.NoError(t, err)

	l.Info("started")
	require.NoError(t, l.Sync())

	assert.FileExists(t, path)
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "dir", "service.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestMustLogger_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLogger(config.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "dir", "service.log")})
	})
}
