package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_ForwardsFieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := New(zap.New(core))

	logger.Debug("loading", "table", "staff_view_preferences")
	logger.Info("loaded")
	logger.Error("save failed", errors.New("db down"), "user_id", "u-1")

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "staff_view_preferences", entries[0].ContextMap()["table"])
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "db down", entries[2].ContextMap()["error"])
	require.Equal(t, "u-1", entries[2].ContextMap()["user_id"])
}

func TestNew_NilBaseIsNoop(t *testing.T) {
	logger := New(nil)
	require.NotPanics(t, func() {
		logger.Error("ignored", nil)
	})
}
