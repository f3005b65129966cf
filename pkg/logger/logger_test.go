package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Initialize(Config{Level: level, Format: "json", Output: &buf})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "console"})
	})
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestInfo_WritesFieldsAndCaller(t *testing.T) {
	buf := captureJSON(t, "info")

	Info("Product saved", map[string]interface{}{"slug": "the-prince"})

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "Product saved", lines[0]["message"])
	assert.Equal(t, "the-prince", lines[0]["slug"])
	assert.Contains(t, lines[0]["caller"], "logger_test.go")
}

func TestLevelFiltering(t *testing.T) {
	buf := captureJSON(t, "warn")

	Debug("hidden")
	Info("hidden too")
	Warn("shown")
	Error("failed", errors.New("boom"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestNamed_AddsComponent(t *testing.T) {
	buf := captureJSON(t, "debug")

	Named("forms").Info("Sending email")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "forms", lines[0]["component"])
}

func TestInitialize_AlsoWritesLogFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "booktime.log")
	Initialize(Config{Level: "info", Format: "console", Output: &buf, File: file})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "console"})
	})

	Info("written twice", map[string]interface{}{"product_id": 3})

	assert.Contains(t, buf.String(), "written twice")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "written twice", entry["message"])
	assert.Equal(t, float64(3), entry["product_id"])
}
