package command

import (
	"context"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

// recordChange stores change when a recorder is wired. A failed write is
// logged and never fails the mutation that produced it.
func recordChange(ctx context.Context, recorder types.ChangeRecorder, logger types.Logger, change types.Change) {
	if recorder == nil {
		return
	}
	if err := recorder.RecordChange(ctx, change); err != nil {
		logger.Error("view preference change not recorded", err, "kind", string(change.Kind), "table", string(change.Table))
	}
}
