package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("bogus"))
}

func TestNew_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	lg, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)

	lg.Info("hello")
	_ = lg.Sync()

	assert.True(t, lg.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Dev(t *testing.T) {
	lg, err := New(Config{Level: "warn", Dev: true})
	require.NoError(t, err)
	assert.False(t, lg.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_DevWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	console := &zaptest.Buffer{}
	lg, err := build(Config{Level: "info", Dev: true, File: path}, console)
	require.NoError(t, err)

	lg.Info("both sinks")
	_ = lg.Sync()

	line := console.Stripped()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "both sinks")
	assert.NotContains(t, line, `"msg"`, "console stays human readable")

	files, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"both sinks"`)
}
