package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "warn", "json")

	l.Info("dropped")
	l.Warn("kept", "id", "p1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "p1", rec["id"])
	assert.Same(t, l, L())
}

func TestSetupWriter_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "", "")
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
