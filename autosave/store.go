package autosave

import (
	"context"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
)

// PreferenceSaver is satisfied by *viewstate.Store.
type PreferenceSaver interface {
	SavePreferences(ctx context.Context, session types.Session, patch types.Patch) error
}

// StoreOptions tunes ForStore.
type StoreOptions struct {
	Delay       time.Duration
	BaseContext context.Context
	Logger      types.Logger
	OnError     func(error)
}

// ForStore coalesces preference patches for one session into a single
// SavePreferences call per quiet period.
func ForStore(saver PreferenceSaver, session types.Session, opts StoreOptions) (*Debouncer[types.Patch], error) {
	if saver == nil {
		return nil, types.ErrServiceNotReady
	}
	return New(Config[types.Patch]{
		Delay: opts.Delay,
		Save: func(ctx context.Context, patch types.Patch) error {
			if patch.Empty() {
				return nil
			}
			return saver.SavePreferences(ctx, session, patch)
		},
		Merge: func(pending, next types.Patch) types.Patch {
			return pending.Merge(next)
		},
		BaseContext: opts.BaseContext,
		Logger:      opts.Logger,
		OnError:     opts.OnError,
	})
}
