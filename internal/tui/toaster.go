package tui

import "wishlist-cli/internal/reorder"

// toastEvent carries a Show (toast set) or a Dismiss (only id set) into the update loop.
type toastEvent struct {
	toast   reorder.Toast
	dismiss string
}

// chanToaster hands toasts to the bubbletea loop. The controller calls it under its lock, so
// sends never block: when the buffer is full the event is dropped and the view falls back
// to the undo window's own state.
type chanToaster struct {
	ch chan toastEvent
}

func newChanToaster(buffer int) *chanToaster {
	if buffer <= 0 {
		buffer = 32
	}
	return &chanToaster{ch: make(chan toastEvent, buffer)}
}

func (t *chanToaster) Show(ts reorder.Toast) {
	select {
	case t.ch <- toastEvent{toast: ts}:
	default:
	}
}

func (t *chanToaster) Dismiss(id string) {
	select {
	case t.ch <- toastEvent{dismiss: id}:
	default:
	}
}
