package reorder

import (
	"context"
	"testing"
	"time"

	"wishlist-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type undoCall struct {
	prior []string
	ranks []model.RankUpdate
}

func newTestWindow(t *testing.T) (*UndoWindow, *FakeClock, *Recorder, *[]undoCall) {
	t.Helper()
	clock := NewFakeClock(time.Unix(0, 0))
	rec := &Recorder{}
	var calls []undoCall
	w := NewUndoWindow(clock, 0, rec, func(_ context.Context, prior []model.Item, ranks []model.RankUpdate) *Flight {
		calls = append(calls, undoCall{prior: model.ItemIDs(prior), ranks: ranks})
		return nil
	})
	return w, clock, rec, &calls
}

func TestUndoWindow_ArmShowsToastWithDefaultDuration(t *testing.T) {
	w, clock, rec, _ := newTestWindow(t)
	w.Arm(makeItems(2), Ranks(makeItems(2)))

	require.True(t, w.Armed())
	deadline, ok := w.Deadline()
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(5000*time.Millisecond), deadline)

	toasts := rec.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, DefaultUndoWindow, toasts[0].Duration)
	_, ok = toasts[0].Action("Undo")
	assert.True(t, ok)
}

func TestUndoWindow_InvokeBeforeExpiry(t *testing.T) {
	w, clock, rec, calls := newTestWindow(t)
	prior := makeItems(3)
	w.Arm(prior, Ranks(prior))

	clock.Advance(2 * time.Second)
	assert.Equal(t, 3*time.Second, w.Remaining())
	w.Invoke(context.Background())

	require.Len(t, *calls, 1)
	assert.Equal(t, abc, (*calls)[0].prior)
	assert.Equal(t, Ranks(prior), (*calls)[0].ranks)
	assert.False(t, w.Armed())
	assert.Empty(t, rec.Active())
	assert.Equal(t, 0, clock.Pending())

	w.Invoke(context.Background())
	assert.Len(t, *calls, 1, "invoke is single-shot")
}

func TestUndoWindow_ExpiryDiscardsSilently(t *testing.T) {
	w, clock, rec, calls := newTestWindow(t)
	w.Arm(makeItems(2), nil)

	clock.Advance(4999 * time.Millisecond)
	assert.True(t, w.Armed())
	clock.Advance(time.Millisecond)

	assert.False(t, w.Armed())
	assert.Empty(t, *calls)
	assert.Empty(t, rec.Active())
	assert.Zero(t, w.Remaining())
}

func TestUndoWindow_RearmDiscardsPreviousWithoutInvoking(t *testing.T) {
	w, clock, rec, calls := newTestWindow(t)
	w.Arm(makeItems(2), nil)
	first, _ := rec.ActiveAction("Undo")

	clock.Advance(3 * time.Second)
	w.Arm(makeItems(3), nil)

	assert.Empty(t, *calls)
	assert.Len(t, rec.Active(), 1)
	assert.Equal(t, 1, clock.Pending())
	assert.Nil(t, first.Run(context.Background()))
	assert.Empty(t, *calls, "the discarded window's action is dead")

	// The new window runs its full duration from when it was armed.
	clock.Advance(3 * time.Second)
	assert.True(t, w.Armed())
	w.Invoke(context.Background())
	require.Len(t, *calls, 1)
	assert.Len(t, (*calls)[0].prior, 3)
}

func TestUndoWindow_DisarmHasNoSideEffects(t *testing.T) {
	w, clock, rec, calls := newTestWindow(t)
	w.Arm(makeItems(2), nil)
	w.Disarm()
	w.Disarm()

	assert.False(t, w.Armed())
	assert.Empty(t, rec.Active())
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(time.Minute)
	assert.Empty(t, *calls)
}
