package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsarena/meterage/config"
)

func TestMockLoggerCollectsEvents(t *testing.T) {
	m := &MockLogger{}
	m.Info().WithField("key", 42).Logf("hello %s", "world")
	m.Error().WithString("reason", "boom").Logf("failed")

	require.Len(t, m.Events, 2)
	assert.Equal(t, "hello world", m.Events[0].Message)
	assert.Equal(t, 42, m.Events[0].Fields["key"])
	assert.Equal(t, config.InfoLevel, m.Events[0].Level)

	errs := m.EventsAt(config.ErrorLevel)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Fields["reason"])
}

func TestLogrusLoggerSetLevel(t *testing.T) {
	l := &LogrusLogger{}
	require.NoError(t, l.Start())

	assert.Error(t, l.SetLevel("not a level"))
	assert.NoError(t, l.SetLevel("debug"))
	// setting a level before Start is also preserved
	l2 := &LogrusLogger{}
	require.NoError(t, l2.SetLevel("error"))
	require.NoError(t, l2.Start())
}

func TestLogrusLoggerLevelFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = config.DebugLevel
	l := &LogrusLogger{Config: cfg}
	require.NoError(t, l.Start())
	// emitting on every level should not panic
	l.Debug().Logf("debug")
	l.Info().WithFields(map[string]any{"a": 1}).Logf("info")
	l.Warn().Logf("warn")
	l.Error().Logf("error")
	require.NoError(t, l.Stop())
}

func TestNullLoggerIsSafe(t *testing.T) {
	var l Logger = &NullLogger{}
	l.Debug().WithField("k", "v").WithFields(map[string]any{"x": 1}).Logf("ignored")
	assert.NoError(t, l.SetLevel("anything"))
}
