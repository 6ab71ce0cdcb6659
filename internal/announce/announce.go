// Package announce carries screen-reader style announcements from the reorder flow to
// whichever views are listening.
package announce

import (
	"sync"
	"time"
)

type Kind string

const (
	KindDragStart  Kind = "drag-start"
	KindDragOver   Kind = "drag-over"
	KindDrop       Kind = "drop"
	KindCancel     Kind = "cancel"
	KindPersisted  Kind = "persisted"
	KindRolledBack Kind = "rolled-back"
	KindUndone     Kind = "undone"
)

type Announcement struct {
	Kind     Kind      `json:"kind"`
	ListID   string    `json:"listId,omitempty"`
	ItemID   string    `json:"itemId,omitempty"`
	Position int       `json:"position,omitempty"`
	Total    int       `json:"total,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Bus fans announcements out to subscribers. Each subscriber has a bounded buffer; when it
// is full the announcement is dropped for that subscriber instead of blocking Publish.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Announcement
	nextID int
	buffer int
	closed bool
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{subs: map[int]chan Announcement{}, buffer: buffer}
}

func (b *Bus) Publish(a Announcement) {
	if b == nil {
		return
	}
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- a:
		default:
		}
	}
}

// Subscribe returns a receive channel and a cancel func that unsubscribes and closes it.
func (b *Bus) Subscribe() (<-chan Announcement, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Announcement, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Close closes every subscriber channel; later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
