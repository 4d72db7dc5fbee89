// Package logging adapts go.uber.org/zap to the types.Logger contract.
package logging

import (
	"fmt"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger forwards types.Logger calls to a zap SugaredLogger. Field arguments
// are alternating key/value pairs.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ types.Logger = (*Logger)(nil)

// New wraps base. A nil base yields a no-op logger.
func New(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{sugar: base.Sugar()}
}

// Build creates a production zap logger, at debug level when verbose is set.
func Build(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Debug implements types.Logger.
func (l *Logger) Debug(msg string, fields ...any) {
	l.sugar.Debugw(msg, fields...)
}

// Info implements types.Logger.
func (l *Logger) Info(msg string, fields ...any) {
	l.sugar.Infow(msg, fields...)
}

// Error implements types.Logger.
func (l *Logger) Error(msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.sugar.Errorw(msg, fields...)
}

// Zap returns the underlying logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}
