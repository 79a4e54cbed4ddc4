package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Writer: &buf})
	logger.Debug("hidden")
	logger.Info("parsed", "links", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parsed", entry["msg"])
	assert.Equal(t, float64(3), entry["links"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: slog.LevelDebug, Format: "console", Writer: &buf}).Debug("segment", "candidate", "x")
	assert.Contains(t, buf.String(), "msg=segment")
	assert.Contains(t, buf.String(), "candidate=x")
}
