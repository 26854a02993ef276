package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, logging.Validate(config.LogConfig{}))
	assert.NoError(t, logging.Validate(config.LogConfig{Level: "warn", Format: "console"}))
	assert.Error(t, logging.Validate(config.LogConfig{Level: "loud"}))
	assert.Error(t, logging.Validate(config.LogConfig{Format: "xml"}))
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("binding registered", zap.String("id", "mailer"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "binding registered", entry["msg"])
	assert.Equal(t, "mailer", entry["id"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Level: "debug", Format: "console"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("container flushed")
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "container flushed")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := logging.New(config.LogConfig{Level: "verbose"})
	assert.Error(t, err)
}
