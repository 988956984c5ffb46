package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionCall_Failed(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	FunctionCall(l, "TravelWeather", "travel_weather", 5*time.Millisecond, errors.New("unreachable"), "context_id", "c1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "function.call.failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "unreachable", entry["error"])
	assert.Equal(t, "travel_weather", entry["function"])
	assert.Equal(t, "c1", entry["context_id"])
}

func TestModelCall_Completed(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, CustomAttrs: map[string]any{"service": "dv"}})
	ModelCall(l, "gpt-35-turbo", 42, time.Second, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "model.call.completed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 42, entry["total_tokens"])
	assert.Equal(t, "dv", entry["service"])
	assert.NotContains(t, entry, "error")
}

func TestModelCall_Zerolog(t *testing.T) {
	var buf bytes.Buffer
	ModelCall(NewZerologAdapter(zerolog.New(&buf)), "claude", 7, time.Millisecond, nil)
	assert.Contains(t, buf.String(), `"total_tokens":7`)
	assert.Contains(t, buf.String(), `"message":"model.call.completed"`)
}

func TestStartTimer(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})
	done := StartTimer(l, "kernel.chat", "skill", "ChatBot")
	done()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "operation.completed", entry["msg"])
	assert.Equal(t, "kernel.chat", entry["operation"])
	assert.Equal(t, "ChatBot", entry["skill"])
}
