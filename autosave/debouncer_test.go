package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type saveRecorder[T any] struct {
	mu     sync.Mutex
	values []T
	err    error
}

func (r *saveRecorder[T]) save(_ context.Context, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
	return r.err
}

func (r *saveRecorder[T]) saved() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func TestDebouncer_CoalescesQueuedValues(t *testing.T) {
	rec := &saveRecorder[[]int]{}
	d, err := New(Config[[]int]{
		Delay: 20 * time.Millisecond,
		Save:  rec.save,
		Merge: func(pending, next []int) []int { return append(pending, next...) },
	})
	require.NoError(t, err)

	require.NoError(t, d.Queue([]int{1}))
	require.NoError(t, d.Queue([]int{2}))
	require.NoError(t, d.Queue([]int{3}))
	require.True(t, d.Pending())

	require.Eventually(t, func() bool { return len(rec.saved()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{1, 2, 3}, rec.saved()[0])
	require.False(t, d.Pending())
	require.NoError(t, d.Close(context.Background()))
	require.Len(t, rec.saved(), 1)
}

func TestDebouncer_FlushBypassesTimer(t *testing.T) {
	rec := &saveRecorder[string]{}
	d, err := New(Config[string]{Delay: time.Hour, Save: rec.save})
	require.NoError(t, err)

	require.NoError(t, d.Queue("a"))
	require.NoError(t, d.Queue("b"))
	require.NoError(t, d.Flush(context.Background()))

	require.Equal(t, []string{"b"}, rec.saved())
	require.False(t, d.Pending())

	require.NoError(t, d.Flush(context.Background()))
	require.Len(t, rec.saved(), 1)
	require.NoError(t, d.Close(context.Background()))
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	rec := &saveRecorder[string]{}
	d, err := New(Config[string]{Delay: 10 * time.Millisecond, Save: rec.save})
	require.NoError(t, err)

	require.NoError(t, d.Queue("dropped"))
	d.Cancel()
	time.Sleep(30 * time.Millisecond)

	require.Empty(t, rec.saved())
	require.NoError(t, d.Close(context.Background()))
	require.Empty(t, rec.saved())
}

func TestDebouncer_CloseFlushesAndRejects(t *testing.T) {
	rec := &saveRecorder[string]{}
	d, err := New(Config[string]{Delay: time.Hour, Save: rec.save})
	require.NoError(t, err)

	require.NoError(t, d.Queue("last"))
	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, []string{"last"}, rec.saved())
	require.ErrorIs(t, d.Queue("late"), ErrClosed)
}

func TestDebouncer_TimerErrorsReachCallback(t *testing.T) {
	rec := &saveRecorder[string]{err: errors.New("offline")}
	errs := make(chan error, 1)
	d, err := New(Config[string]{
		Delay:   5 * time.Millisecond,
		Save:    rec.save,
		OnError: func(err error) { errs <- err },
	})
	require.NoError(t, err)

	require.NoError(t, d.Queue("x"))
	select {
	case got := <-errs:
		require.EqualError(t, got, "offline")
	case <-time.After(time.Second):
		t.Fatal("expected error callback")
	}
	require.NoError(t, d.Close(context.Background()))
}

func TestNew_RequiresSaveFunc(t *testing.T) {
	_, err := New(Config[string]{})
	require.Error(t, err)
}

type patchSaver struct {
	mu      sync.Mutex
	patches []types.Patch
	session types.Session
}

func (p *patchSaver) SavePreferences(_ context.Context, session types.Session, patch types.Patch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = session
	p.patches = append(p.patches, patch)
	return nil
}

func TestForStore_MergesPatchesIntoOneSave(t *testing.T) {
	saver := &patchSaver{}
	session := types.Session{UserID: uuid.New()}
	d, err := ForStore(saver, session, StoreOptions{Delay: time.Hour})
	require.NoError(t, err)

	rows := 25
	col := "email"
	dir := types.SortDesc
	require.NoError(t, d.Queue(types.Patch{RowsPerPage: &rows}))
	require.NoError(t, d.Queue(types.Patch{SortColumn: &col, SortDirection: &dir}))
	require.NoError(t, d.Queue(types.Patch{}))
	require.NoError(t, d.Flush(context.Background()))

	require.Len(t, saver.patches, 1)
	require.Equal(t, session, saver.session)
	merged := saver.patches[0]
	require.Equal(t, 25, *merged.RowsPerPage)
	require.Equal(t, "email", *merged.SortColumn)
	require.Equal(t, types.SortDesc, *merged.SortDirection)
	require.NoError(t, d.Close(context.Background()))
}

func TestForStore_SkipsEmptyPatch(t *testing.T) {
	saver := &patchSaver{}
	d, err := ForStore(saver, types.Session{UserID: uuid.New()}, StoreOptions{Delay: time.Hour})
	require.NoError(t, err)

	require.NoError(t, d.Queue(types.Patch{}))
	require.NoError(t, d.Close(context.Background()))
	require.Empty(t, saver.patches)
}
