package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Str("param", "CTC_c").Int("year", 2020).Msg("adjusted")

	out := buf.String()
	assert.Contains(t, out, `"param":"CTC_c"`)
	assert.Contains(t, out, `"year":2020`)
	assert.Contains(t, out, `"message":"adjusted"`)
}

func TestTestLoggerCaptures(t *testing.T) {
	tl := NewTestLogger(t)

	tl.Debug().Str("reform", "cpi_offset_2021").Msg("reconciling")
	require.True(t, tl.Contains("cpi_offset_2021"))

	tl.Reset()
	assert.Empty(t, tl.Buffer.String())
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "bogus")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())
}
