package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	logger.Info("hello")
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Debug: true, Output: &buf})
	require.NoError(t, err)

	logger.Debug("classpath entries")
	assert.Contains(t, buf.String(), "classpath entries")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}
