package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

func TestSelectLevel(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want zerolog.Level
	}{
		{"default", Options{}, zerolog.InfoLevel},
		{"configured", Options{Level: "error"}, zerolog.ErrorLevel},
		{"upper case", Options{Level: "WARN"}, zerolog.WarnLevel},
		{"verbose wins", Options{Level: "error", Verbose: true}, zerolog.DebugLevel},
		{"quiet wins", Options{Level: "debug", Quiet: true}, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectLevel(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := selectLevel(Options{Level: "loud"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Format: "json", Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug().Msg("hidden")
	logger.Info().Str("source", "a.json").Msg("loaded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "a.json", entry["source"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_NonTerminalDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "auto", Console: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "console", Console: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_FileSink(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "sigkat.log")

	logger, closer, err := New(Options{Format: "json", File: path, Console: &buf})
	require.NoError(t, err)

	logger.Warn().Msg("written twice")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Contains(t, buf.String(), "written twice")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New(Options{Level: "chatty"})
	require.Error(t, err)
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())
}

func TestFromConfig(t *testing.T) {
	opts := FromConfig(config.LogConfig{Level: "debug", Format: "json", File: "x.log"})
	assert.Equal(t, Options{Level: "debug", Format: "json", File: "x.log"}, opts)
}
