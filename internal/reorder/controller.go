package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wishlist-cli/internal/announce"
	"wishlist-cli/internal/model"

	"go.uber.org/zap"
)

var (
	ErrTooFewItems    = errors.New("reorder needs at least two items")
	ErrUnknownItem    = errors.New("unknown item")
	ErrDragActive     = errors.New("a drag is already in progress")
	ErrNotDragging    = errors.New("no drag in progress")
	ErrClosed         = errors.New("controller closed")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRetry = errors.New("nothing to retry")
)

// DefaultPersistTimeout bounds one order write.
const DefaultPersistTimeout = 10 * time.Second

// Persister durably stores a rank assignment for a list.
type Persister interface {
	PersistOrder(ctx context.Context, listID string, ranks []model.RankUpdate) error
}

type PersistFunc func(ctx context.Context, listID string, ranks []model.RankUpdate) error

func (f PersistFunc) PersistOrder(ctx context.Context, listID string, ranks []model.RankUpdate) error {
	return f(ctx, listID, ranks)
}

type State int

const (
	StateIdle State = iota
	StateDragging
	StatePersistPending
	StateSettled
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StatePersistPending:
		return "persist-pending"
	case StateSettled:
		return "settled"
	case StateRolledBack:
		return "rolled-back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Config struct {
	ListID    string
	Items     []model.Item
	Persister Persister

	// Optional collaborators.
	Cache   *Cache
	Toaster Toaster
	Bus     *announce.Bus
	Clock   Clock
	Logger  *zap.Logger

	UndoWindow     time.Duration
	PersistTimeout time.Duration
}

// Controller drives one list view through drag, optimistic apply, persistence and either
// settle (with a timed undo) or rollback. It is safe for concurrent use; persistence runs
// on its own goroutine per write.
type Controller struct {
	mu sync.Mutex

	listID    string
	persister Persister
	cache     *Cache
	toaster   Toaster
	bus       *announce.Bus
	log       *zap.Logger
	timeout   time.Duration
	undo      *UndoWindow

	state  State
	items  []model.Item
	drag   *dragSession
	gen    uint64
	closed bool

	// retry is the Retry action of the latest rolled-back write, kept so it stays reachable
	// when a toaster drops the toast.
	retry *Action
}

type dragSession struct {
	itemID   string
	source   int
	over     int
	snapshot []model.Item
	// resume is the state restored by a cancel: a write outcome that lands mid-drag is
	// recorded here instead of replacing Dragging.
	resume State
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		listID:    cfg.ListID,
		persister: cfg.Persister,
		cache:     cfg.Cache,
		toaster:   cfg.Toaster,
		bus:       cfg.Bus,
		log:       cfg.Logger,
		timeout:   cfg.PersistTimeout,
		items:     model.CloneItems(cfg.Items),
	}
	if c.toaster == nil {
		c.toaster = nopToaster{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.timeout <= 0 {
		c.timeout = DefaultPersistTimeout
	}
	if c.items == nil {
		c.items = []model.Item{}
	}
	c.undo = NewUndoWindow(cfg.Clock, cfg.UndoWindow, c.toaster, c.startUndo)
	return c
}

func (c *Controller) ListID() string { return c.listID }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns a copy of the local ordering.
func (c *Controller) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneItems(c.items)
}

// Dragging returns the dragged item id and the hovered index.
func (c *Controller) Dragging() (itemID string, over int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return "", 0, false
	}
	return c.drag.itemID, c.drag.over, true
}

// UndoWindow exposes the window for countdown display.
func (c *Controller) UndoWindow() *UndoWindow { return c.undo }

// Reset replaces the local ordering with an authoritative one. It refuses while a drag or
// a write is in progress.
func (c *Controller) Reset(items []model.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateDragging || c.state == StatePersistPending {
		return false
	}
	c.items = model.CloneItems(items)
	return true
}

// BeginDrag picks up itemID and captures the rollback snapshot. Any armed undo window is
// discarded: a new reorder supersedes it.
func (c *Controller) BeginDrag(itemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state == StateDragging {
		return ErrDragActive
	}
	if !CanReorder(c.items) {
		return ErrTooFewItems
	}
	idx := indexOf(c.items, itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}

	c.undo.Disarm()
	resume := StateIdle
	if c.state == StatePersistPending {
		resume = StatePersistPending
	}
	c.drag = &dragSession{itemID: itemID, source: idx, over: idx, snapshot: model.CloneItems(c.items), resume: resume}
	c.state = StateDragging
	c.announceLocked(announce.KindDragStart, itemID, idx,
		fmt.Sprintf("Picked up %s. Position %d of %d.", c.items[idx].Title, idx+1, len(c.items)))
	return nil
}

// DragOver records the hovered position. It never mutates the ordering.
func (c *Controller) DragOver(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil || index < 0 || index >= len(c.items) || index == c.drag.over {
		return
	}
	c.drag.over = index
	c.announceLocked(announce.KindDragOver, c.drag.itemID, index,
		fmt.Sprintf("%s is over position %d of %d.", c.items[c.drag.source].Title, index+1, len(c.items)))
}

// Cancel ends the drag without mutation.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Controller) cancelLocked() {
	if c.drag == nil {
		return
	}
	d := c.drag
	c.drag = nil
	c.state = d.resume
	c.announceLocked(announce.KindCancel, d.itemID, d.source,
		fmt.Sprintf("Movement cancelled. %s returned to position %d.", c.items[d.source].Title, d.source+1))
}

// Drop releases the dragged item at target. A nil target or the source position cancels the
// drag and returns nil. Otherwise the new ordering is applied locally and to the cache at
// once and the write runs in the background; the returned flight completes after the
// settle or rollback has been handled.
func (c *Controller) Drop(ctx context.Context, target *int) (*Flight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.drag == nil {
		return nil, ErrNotDragging
	}
	next, ok := Move(c.items, c.drag.source, target)
	if !ok {
		c.cancelLocked()
		return nil, nil
	}
	d := c.drag
	c.drag = nil
	// An undo armed by a write that settled mid-drag is superseded by this reorder.
	c.undo.Disarm()
	c.announceLocked(announce.KindDrop, d.itemID, *target,
		fmt.Sprintf("%s dropped at position %d of %d.", next[*target].Title, *target+1, len(next)))
	return c.launchLocked(ctx, FlightReorder, next, Ranks(next), d.snapshot), nil
}

// Undo invokes the armed undo window, if any.
func (c *Controller) Undo(ctx context.Context) (*Flight, error) {
	if c.State() == StateDragging {
		return nil, ErrDragActive
	}
	f := c.undo.Invoke(ctx)
	if f == nil {
		return nil, ErrNothingToUndo
	}
	return f, nil
}

// Close tears the view down: the undo window is cancelled without side effects and late
// write completions are ignored. In-flight writes are not cancelled.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.drag = nil
	c.undo.Disarm()
}

func (c *Controller) startUndo(ctx context.Context, prior []model.Item, priorRanks []model.RankUpdate) *Flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateDragging {
		return nil
	}
	next := model.CloneItems(prior)
	Renumber(next)
	return c.launchLocked(ctx, FlightUndo, next, priorRanks, model.CloneItems(c.items))
}

func (c *Controller) retryReorder(ctx context.Context, ranks []model.RankUpdate) *Flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateDragging || c.state == StatePersistPending {
		return nil
	}
	c.undo.Disarm()
	next := ApplyRanks(c.items, ranks)
	return c.launchLocked(ctx, FlightReorder, next, ranks, model.CloneItems(c.items))
}

// launchLocked applies next optimistically and starts the write. rollback is the ordering
// restored if the write fails.
func (c *Controller) launchLocked(ctx context.Context, kind FlightKind, next []model.Item, ranks []model.RankUpdate, rollback []model.Item) *Flight {
	c.gen++
	gen := c.gen
	c.items = next
	c.state = StatePersistPending
	c.retry = nil

	var patch *Patch
	if c.cache != nil {
		applied := model.CloneItems(next)
		patch = c.cache.Patch(c.listID, func([]model.Item) []model.Item { return applied })
	}

	f := newFlight(kind, c.listID, ranks, next)
	c.log.Debug("persist order",
		zap.String("list", c.listID),
		zap.String("kind", string(kind)),
		zap.Int("items", len(ranks)))

	persistCtx := context.WithoutCancel(ctx)
	go func() {
		pctx, cancel := context.WithTimeout(persistCtx, c.timeout)
		err := c.persister.PersistOrder(pctx, c.listID, ranks)
		cancel()
		c.complete(persistCtx, f, gen, patch, rollback, err)
		f.finish(err)
	}()
	return f
}

func (c *Controller) complete(ctx context.Context, f *Flight, gen uint64, patch *Patch, rollback []model.Item, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("write completed after close", zap.String("list", c.listID), zap.Error(err))
		return
	}

	// A newer drag or write owns the local ordering; never roll it back from here.
	if gen != c.gen {
		c.mu.Unlock()
		if err == nil {
			c.log.Debug("superseded write settled", zap.String("list", c.listID))
			return
		}
		c.log.Warn("superseded write failed", zap.String("list", c.listID), zap.Error(err))
		c.forceRefresh(ctx)
		c.toaster.Show(Toast{ID: newToastID(), Kind: ToastError, Message: FailureMessage(err), Duration: errorToastDuration})
		return
	}

	if err == nil {
		c.settleLocked(f, rollback)
		c.mu.Unlock()
		return
	}

	patch.Revert()
	c.items = rollback
	c.setStateLocked(StateRolledBack)
	c.rebaseDragLocked()
	class := Classify(err)
	c.log.Warn("order write failed",
		zap.String("list", c.listID),
		zap.String("kind", string(f.Kind)),
		zap.Stringer("class", class),
		zap.Error(err))

	var toast Toast
	switch f.Kind {
	case FlightUndo:
		prior := model.CloneItems(f.applied)
		ranks := f.Ranks
		toast = Toast{
			ID:       newToastID(),
			Kind:     ToastError,
			Message:  UndoFailureMessage(err),
			Duration: errorToastDuration,
			Actions: []Action{{
				Label: "Retry",
				Key:   "R",
				Run:   func(ctx context.Context) *Flight { return c.startUndo(ctx, prior, ranks) },
			}},
		}
		c.announceLocked(announce.KindRolledBack, "", 0, "Undo failed. The new order was kept.")
	default:
		toast = Toast{ID: newToastID(), Kind: ToastError, Message: FailureMessage(err), Duration: errorToastDuration}
		if class == FailureTransient {
			ranks := f.Ranks
			toast.Actions = []Action{{
				Label: "Retry",
				Key:   "R",
				Run:   func(ctx context.Context) *Flight { return c.retryReorder(ctx, ranks) },
			}}
		}
		c.announceLocked(announce.KindRolledBack, "", 0, "The order could not be saved and was restored.")
	}
	if a, ok := toast.Action("Retry"); ok {
		c.retry = &a
	}
	c.toaster.Show(toast)
	c.mu.Unlock()

	// Undo failures always refresh: the authoritative order is unknown at that point.
	if class == FailureStale || f.Kind == FlightUndo {
		c.forceRefresh(ctx)
	}
}

func (c *Controller) settleLocked(f *Flight, rollback []model.Item) {
	c.setStateLocked(StateSettled)
	switch f.Kind {
	case FlightUndo:
		c.toaster.Show(Toast{ID: newToastID(), Kind: ToastInfo, Message: "Order restored.", Duration: infoToastDuration})
		c.announceLocked(announce.KindUndone, "", 0, "Previous order restored.")
	default:
		c.undo.Arm(rollback, Ranks(rollback))
		c.announceLocked(announce.KindPersisted, "", 0, "New order saved.")
	}
}

// setStateLocked records a write outcome. During a drag it becomes the state a cancel
// returns to.
func (c *Controller) setStateLocked(s State) {
	if c.drag != nil {
		c.drag.resume = s
		return
	}
	c.state = s
}

// rebaseDragLocked points an active drag at the rolled-back ordering, so a cancel or a
// later drop starts from what is actually stored.
func (c *Controller) rebaseDragLocked() {
	d := c.drag
	if d == nil {
		return
	}
	d.snapshot = model.CloneItems(c.items)
	if idx := indexOf(c.items, d.itemID); idx >= 0 {
		d.source = idx
	}
	if d.over >= len(c.items) {
		d.over = len(c.items) - 1
	}
}

// Retry re-runs the latest rolled-back write that offered a Retry action.
func (c *Controller) Retry(ctx context.Context) (*Flight, error) {
	c.mu.Lock()
	a := c.retry
	c.mu.Unlock()
	if a == nil {
		return nil, ErrNothingToRetry
	}
	f := a.Run(ctx)
	if f == nil {
		return nil, ErrNothingToRetry
	}
	return f, nil
}

// CanRetry reports whether Retry has a write to re-run.
func (c *Controller) CanRetry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry != nil
}

func (c *Controller) forceRefresh(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, c.listID); err != nil {
		c.log.Warn("forced refresh failed", zap.String("list", c.listID), zap.Error(err))
	}
}

func (c *Controller) announceLocked(kind announce.Kind, itemID string, pos int, msg string) {
	if c.bus == nil {
		return
	}
	a := announce.Announcement{Kind: kind, ListID: c.listID, ItemID: itemID, Total: len(c.items), Message: msg}
	if itemID != "" {
		a.Position = pos + 1
	}
	c.bus.Publish(a)
}
