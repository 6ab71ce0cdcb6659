package reorder

import (
	"context"
	"sync"
	"time"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Action is a toast button. Run starts the follow-up write and returns its flight (nil when
// the action no longer applies).
type Action struct {
	Label string
	Key   string
	Run   func(ctx context.Context) *Flight
}

// Toast is a transient notification with at most two actions.
type Toast struct {
	ID       string
	Kind     ToastKind
	Message  string
	Actions  []Action
	Duration time.Duration
}

// Action returns the toast action with the given label.
func (t Toast) Action(label string) (Action, bool) {
	for _, a := range t.Actions {
		if a.Label == label {
			return a, true
		}
	}
	return Action{}, false
}

// Toaster displays toasts. Implementations must not block: the controller calls them
// while holding its lock.
type Toaster interface {
	Show(t Toast)
	Dismiss(id string)
}

type nopToaster struct{}

func (nopToaster) Show(Toast)     {}
func (nopToaster) Dismiss(string) {}

// Recorder is an in-memory Toaster that keeps every toast shown and the ones still active.
type Recorder struct {
	mu     sync.Mutex
	shown  []Toast
	active []Toast
}

func (r *Recorder) Show(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, t)
	r.active = append(r.active, t)
}

func (r *Recorder) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.active {
		if t.ID == id {
			r.active = append(r.active[:i], r.active[i+1:]...)
			return
		}
	}
}

// Shown returns every toast ever shown, oldest first.
func (r *Recorder) Shown() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.shown...)
}

// Active returns toasts not yet dismissed, oldest first.
func (r *Recorder) Active() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.active...)
}

// Last returns the most recently shown toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shown) == 0 {
		return Toast{}, false
	}
	return r.shown[len(r.shown)-1], true
}

// ActiveAction finds an action by label on the newest active toast offering it.
func (r *Recorder) ActiveAction(label string) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.active) - 1; i >= 0; i-- {
		if a, ok := r.active[i].Action(label); ok {
			return a, true
		}
	}
	return Action{}, false
}
