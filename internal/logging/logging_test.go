package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wishlist-cli/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wishlist.log")
	log, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(b), "hidden"))
	assert.Contains(t, string(b), "shown")
}

func TestNew_QuietWithoutFileIsNop(t *testing.T) {
	log, err := New(Options{Quiet: true, Level: "debug"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestFromConfig_VerboseForcesDebug(t *testing.T) {
	o := FromConfig(config.LoggingConfig{Level: "error", File: "x.log"}, true)
	assert.Equal(t, "debug", o.Level)
	assert.Equal(t, "x.log", o.File)
}
