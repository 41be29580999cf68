package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/logger"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestNewWithWriter_AttachesContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "vr-engine").
		WithComponent("batch").
		WithRunID("run-1").
		WithRequestID("req-1").
		WithError(errors.New("boom"))

	log.Info().Msg("hello")

	line := lastLine(t, &buf)
	assert.Equal(t, "vr-engine", line["service"])
	assert.Equal(t, "batch", line["component"])
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "hello", line["message"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "vr-engine").SetLevel("warn")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.Equal(t, "kept", lastLine(t, &buf)["message"])

	same := log.SetLevel("loud")
	same.Info().Msg("still dropped")
	assert.NotContains(t, buf.String(), "still dropped")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("nothing") })
}
