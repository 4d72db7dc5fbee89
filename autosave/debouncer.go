package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
)

// DefaultDelay is the quiet period before a queued value is saved.
const DefaultDelay = 750 * time.Millisecond

// ErrClosed is returned when queueing onto a closed debouncer.
var ErrClosed = errors.New("autosave: debouncer closed")

// SaveFunc persists a coalesced value.
type SaveFunc[T any] func(ctx context.Context, value T) error

// MergeFunc folds next into the pending value.
type MergeFunc[T any] func(pending, next T) T

// Config wires a Debouncer.
type Config[T any] struct {
	Delay time.Duration
	Save  SaveFunc[T]
	// Merge defaults to replacing the pending value.
	Merge MergeFunc[T]
	// BaseContext is used for timer-fired saves.
	BaseContext context.Context
	Logger      types.Logger
	OnError     func(error)
}

// Debouncer buffers values and saves them once no new value has arrived for
// the configured delay. Each Queue restarts the timer.
type Debouncer[T any] struct {
	delay   time.Duration
	save    SaveFunc[T]
	merge   MergeFunc[T]
	baseCtx context.Context
	logger  types.Logger
	onError func(error)

	mu         sync.Mutex
	pending    T
	hasPending bool
	timer      *time.Timer
	generation uint64
	closed     bool

	saveMu  sync.Mutex
	running sync.WaitGroup
}

// New constructs a Debouncer.
func New[T any](cfg Config[T]) (*Debouncer[T], error) {
	if cfg.Save == nil {
		return nil, errors.New("autosave: save func required")
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	merge := cfg.Merge
	if merge == nil {
		merge = func(_, next T) T { return next }
	}
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Debouncer[T]{
		delay:   delay,
		save:    cfg.Save,
		merge:   merge,
		baseCtx: baseCtx,
		logger:  logger,
		onError: cfg.OnError,
	}, nil
}

// Queue merges value into the pending buffer and restarts the timer.
func (d *Debouncer[T]) Queue(value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.hasPending {
		d.pending = d.merge(d.pending, value)
	} else {
		d.pending = value
		d.hasPending = true
	}
	d.generation++
	gen := d.generation
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.running.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.running.Done()
		d.fire(gen)
	})
	return nil
}

// Pending reports whether a value is waiting to be saved.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

// Flush saves the pending value immediately, bypassing the timer.
func (d *Debouncer[T]) Flush(ctx context.Context) error {
	value, ok := d.take()
	if !ok {
		return nil
	}
	return d.run(ctx, value)
}

// Cancel drops the pending value without saving it.
func (d *Debouncer[T]) Cancel() {
	d.take()
}

// Close flushes the pending value, rejects further Queue calls and waits for
// timer-fired saves to finish.
func (d *Debouncer[T]) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	err := d.Flush(ctx)
	d.running.Wait()
	return err
}

func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	if d.timer != nil {
		if d.timer.Stop() {
			// the callback will never run
			d.running.Done()
		}
		d.timer = nil
	}
	d.generation++
	if !d.hasPending {
		return zero, false
	}
	value := d.pending
	d.pending = zero
	d.hasPending = false
	return value, true
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.generation || !d.hasPending {
		d.mu.Unlock()
		return
	}
	value := d.pending
	var zero T
	d.pending = zero
	d.hasPending = false
	d.timer = nil
	d.mu.Unlock()

	if err := d.run(d.baseCtx, value); err != nil {
		d.logger.Error("autosave failed", err)
		if d.onError != nil {
			d.onError(err)
		}
	}
}

func (d *Debouncer[T]) run(ctx context.Context, value T) error {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()
	return d.save(ctx, value)
}
