package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessagesSuppressedWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	Stage("req-1", "query routing")

	assert.Empty(t, buf.String())
}

func TestMessagesPrefixedByLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(true)
	defer SetVerbose(false)

	Debug("classified as %s", "general_query")
	Info("cache miss")
	Warn("tier %s down", "sqlite")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] classified as general_query")
	assert.Contains(t, out, "[INFO] cache miss")
	assert.Contains(t, out, "[WARN] tier sqlite down")
}

func TestStageTagsShortRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(true)
	defer SetVerbose(false)

	Stage("6f1c9a2e-41d3-4a7b-9c0d-8e2f5a6b7c8d", "query routing")

	assert.Contains(t, buf.String(), "--- query routing [6f1c9a2e] ---")
}
