package api

import (
	"strings"
	"sync"
)

// ChangeEvent is what the stream pushes to subscribers.
type ChangeEvent struct {
	// Type is "order" after an order write through this server, "refresh" when the workspace
	// changed underneath (another process wrote to it).
	Type   string `json:"type"`
	ListID string `json:"listId,omitempty"`
}

type listHub struct {
	mu   sync.Mutex
	subs map[chan ChangeEvent]struct{}
}

func (h *listHub) broadcast(ev ChangeEvent) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

// broadcaster fans change events out per list. A list has a hub only while someone is
// subscribed to it.
type broadcaster struct {
	mu   sync.Mutex
	hubs map[string]*listHub
}

func newBroadcaster() *broadcaster {
	return &broadcaster{hubs: map[string]*listHub{}}
}

func (b *broadcaster) subscribe(listID string) (<-chan ChangeEvent, func()) {
	listID = strings.TrimSpace(listID)
	ch := make(chan ChangeEvent, 8)

	b.mu.Lock()
	h := b.hubs[listID]
	if h == nil {
		h = &listHub{subs: map[chan ChangeEvent]struct{}{}}
		b.hubs[listID] = h
	}
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			h.mu.Lock()
			delete(h.subs, ch)
			if len(h.subs) == 0 && b.hubs[listID] == h {
				delete(b.hubs, listID)
			}
			h.mu.Unlock()
			b.mu.Unlock()
			close(ch)
		})
	}
}

// subscribers counts the open subscriptions for listID.
func (b *broadcaster) subscribers(listID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.hubs[strings.TrimSpace(listID)]
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (b *broadcaster) orderChanged(listID string) {
	listID = strings.TrimSpace(listID)
	b.mu.Lock()
	h := b.hubs[listID]
	b.mu.Unlock()
	if h != nil {
		h.broadcast(ChangeEvent{Type: "order", ListID: listID})
	}
}

func (b *broadcaster) refreshAll() {
	b.mu.Lock()
	hubs := make(map[string]*listHub, len(b.hubs))
	for id, h := range b.hubs {
		hubs[id] = h
	}
	b.mu.Unlock()
	for id, h := range hubs {
		h.broadcast(ChangeEvent{Type: "refresh", ListID: id})
	}
}
