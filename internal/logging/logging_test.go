package logging_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"trade-sync/internal/logging"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	buf := &bytes.Buffer{}
	path := filepath.Join(t.TempDir(), "sync.log")

	out, err := logging.New(logging.Config{Level: "info", File: path, Console: buf, NoColor: true})
	require.NoError(t, err)

	out.Info().Str("entity", "fx_trade").Int("missing", 3).Msg("missing in target")
	out.Debug().Msg("hidden at info level")
	fmt.Fprintln(out.Writer, "SUMMARY LINE")
	require.NoError(t, out.Close())

	console := buf.String()
	assert.Contains(t, console, "missing in target")
	assert.Contains(t, console, "entity=fx_trade")
	assert.Contains(t, console, "SUMMARY LINE")
	assert.NotContains(t, console, "hidden at info level")

	file, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(file), "missing in target")
	assert.Contains(t, string(file), "SUMMARY LINE")
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	out, err := logging.New(logging.Config{File: path, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	out.Warn().Msg("second run")
	require.NoError(t, out.Close())

	file, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(file), "previous run")
	assert.Contains(t, string(file), "second run")
}

func TestNew_BadFile(t *testing.T) {
	_, err := logging.New(logging.Config{File: filepath.Join(t.TempDir(), "no", "such", "dir.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARNING", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := logging.ParseLevel("chatty")
	assert.Error(t, err)
}
