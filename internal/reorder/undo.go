package reorder

import (
	"context"
	"sync"
	"time"

	"wishlist-cli/internal/model"
)

// DefaultUndoWindow is how long a settled reorder can be undone.
const DefaultUndoWindow = 5 * time.Second

// UndoFunc applies and persists a prior ordering.
type UndoFunc func(ctx context.Context, prior []model.Item, priorRanks []model.RankUpdate) *Flight

// UndoWindow holds at most one undo context behind a single-shot timer.
type UndoWindow struct {
	mu       sync.Mutex
	clock    Clock
	duration time.Duration
	toaster  Toaster
	undo     UndoFunc

	armed *undoContext
	seq   uint64
}

type undoContext struct {
	seq        uint64
	prior      []model.Item
	priorRanks []model.RankUpdate
	deadline   time.Time
	toastID    string
	timer      Timer
}

func NewUndoWindow(clock Clock, d time.Duration, toaster Toaster, undo UndoFunc) *UndoWindow {
	if clock == nil {
		clock = SystemClock()
	}
	if d <= 0 {
		d = DefaultUndoWindow
	}
	if toaster == nil {
		toaster = nopToaster{}
	}
	return &UndoWindow{clock: clock, duration: d, toaster: toaster, undo: undo}
}

// Arm opens a new window for prior/priorRanks, silently discarding any armed one.
func (w *UndoWindow) Arm(prior []model.Item, priorRanks []model.RankUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disarmLocked()

	w.seq++
	uc := &undoContext{
		seq:        w.seq,
		prior:      model.CloneItems(prior),
		priorRanks: append([]model.RankUpdate(nil), priorRanks...),
		deadline:   w.clock.Now().Add(w.duration),
		toastID:    newToastID(),
	}
	seq := uc.seq
	uc.timer = w.clock.AfterFunc(w.duration, func() { w.expire(seq) })
	w.armed = uc

	w.toaster.Show(Toast{
		ID:       uc.toastID,
		Kind:     ToastSuccess,
		Message:  "Order saved.",
		Duration: w.duration,
		Actions: []Action{{
			Label: "Undo",
			Key:   "u",
			Run:   func(ctx context.Context) *Flight { return w.invokeSeq(ctx, seq) },
		}},
	})
}

// Invoke runs the armed undo. It returns nil when no window is armed.
func (w *UndoWindow) Invoke(ctx context.Context) *Flight {
	w.mu.Lock()
	seq := w.seq
	w.mu.Unlock()
	return w.invokeSeq(ctx, seq)
}

func (w *UndoWindow) invokeSeq(ctx context.Context, seq uint64) *Flight {
	w.mu.Lock()
	uc := w.armed
	if uc == nil || uc.seq != seq {
		w.mu.Unlock()
		return nil
	}
	w.disarmLocked()
	w.mu.Unlock()

	if w.undo == nil {
		return nil
	}
	return w.undo(ctx, uc.prior, uc.priorRanks)
}

// Disarm cancels the armed window, if any, and removes its toast without side effects.
func (w *UndoWindow) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disarmLocked()
}

func (w *UndoWindow) disarmLocked() {
	uc := w.armed
	if uc == nil {
		return
	}
	w.armed = nil
	if uc.timer != nil {
		uc.timer.Stop()
	}
	w.toaster.Dismiss(uc.toastID)
}

func (w *UndoWindow) expire(seq uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armed == nil || w.armed.seq != seq {
		return
	}
	toastID := w.armed.toastID
	w.armed = nil
	w.toaster.Dismiss(toastID)
}

func (w *UndoWindow) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.armed != nil
}

// Deadline returns when the armed window expires.
func (w *UndoWindow) Deadline() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armed == nil {
		return time.Time{}, false
	}
	return w.armed.deadline, true
}

// Remaining is the time left on the armed window (zero when none).
func (w *UndoWindow) Remaining() time.Duration {
	deadline, ok := w.Deadline()
	if !ok {
		return 0
	}
	if d := deadline.Sub(w.clock.Now()); d > 0 {
		return d
	}
	return 0
}
