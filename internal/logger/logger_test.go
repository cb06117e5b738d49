package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
}

func TestForRun(t *testing.T) {
	buf := &bytes.Buffer{}
	log := ForRun(NewWithWriter(buf), "run-123", "2026-02")

	log.Info().Msg("gate evaluated")

	out := buf.String()
	assert.Contains(t, out, "run-123")
	assert.Contains(t, out, "2026-02")
}

func TestFromContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("via context")

	assert.True(t, strings.Contains(buf.String(), "via context"))
}

func TestFromContextDefault(t *testing.T) {
	// No logger in context: a usable default is returned.
	log := FromContext(context.Background())
	log.Debug().Msg("default logger")
}
