package reorder

import (
	"context"
	"sync"

	"wishlist-cli/internal/model"

	"go.uber.org/zap"
)

// Loader fetches the authoritative ordering of a list.
type Loader func(ctx context.Context, listID string) ([]model.Item, error)

// Cache is the shared read model: one ordering per list, read by every view. Speculative
// writes go through Patch so each one can be undone exactly.
type Cache struct {
	mu        sync.Mutex
	entries   map[string][]model.Item
	stale     map[string]bool
	refreshes map[string]int
	loader    Loader
	subs      map[int]chan string
	nextSub   int
	log       *zap.Logger
}

func NewCache(loader Loader, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		entries:   map[string][]model.Item{},
		stale:     map[string]bool{},
		refreshes: map[string]int{},
		loader:    loader,
		subs:      map[int]chan string{},
		log:       log,
	}
}

// Get returns a copy of the cached ordering for listID.
func (c *Cache) Get(listID string) ([]model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.entries[listID]
	if !ok {
		return nil, false
	}
	return model.CloneItems(items), true
}

// Set stores an authoritative ordering and clears the stale mark.
func (c *Cache) Set(listID string, items []model.Item) {
	c.mu.Lock()
	c.entries[listID] = model.CloneItems(items)
	delete(c.stale, listID)
	c.mu.Unlock()
	c.notify(listID)
}

// Load returns the cached ordering, fetching it first when missing or stale.
func (c *Cache) Load(ctx context.Context, listID string) ([]model.Item, error) {
	c.mu.Lock()
	items, ok := c.entries[listID]
	fresh := ok && !c.stale[listID]
	c.mu.Unlock()
	if fresh || c.loader == nil {
		return model.CloneItems(items), nil
	}
	loaded, err := c.loader(ctx, listID)
	if err != nil {
		return nil, err
	}
	c.Set(listID, loaded)
	return model.CloneItems(loaded), nil
}

// Patch applies fn to the cached ordering of listID and returns the command holding its
// inverse.
func (c *Cache) Patch(listID string, fn func([]model.Item) []model.Item) *Patch {
	c.mu.Lock()
	prev, had := c.entries[listID]
	next := fn(model.CloneItems(prev))
	c.entries[listID] = model.CloneItems(next)
	c.mu.Unlock()
	c.notify(listID)
	return &Patch{cache: c, listID: listID, prev: prev, had: had}
}

// Invalidate marks listID stale, counts a forced refresh and, with a loader attached,
// refetches it from the authoritative source.
func (c *Cache) Invalidate(ctx context.Context, listID string) error {
	c.mu.Lock()
	c.stale[listID] = true
	c.refreshes[listID]++
	loader := c.loader
	c.mu.Unlock()

	if loader == nil {
		c.notify(listID)
		return nil
	}
	items, err := loader(ctx, listID)
	if err != nil {
		c.log.Warn("cache refresh failed", zap.String("list", listID), zap.Error(err))
		c.notify(listID)
		return err
	}
	c.Set(listID, items)
	return nil
}

// Reload refetches listID for a user or watcher driven reload. It is not counted as a
// forced refresh; on failure the entry stays stale so the next Load retries.
func (c *Cache) Reload(ctx context.Context, listID string) error {
	c.mu.Lock()
	c.stale[listID] = true
	c.mu.Unlock()
	_, err := c.Load(ctx, listID)
	return err
}

// Refreshes reports how many forced refreshes listID has had.
func (c *Cache) Refreshes(listID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshes[listID]
}

func (c *Cache) Stale(listID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale[listID]
}

// Subscribe returns a channel receiving the id of every list that changed. Slow readers
// miss notifications rather than block writers.
func (c *Cache) Subscribe() (<-chan string, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan string, 8)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Cache) notify(listID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- listID:
		default:
		}
	}
}

func (c *Cache) restore(listID string, prev []model.Item, had bool) {
	c.mu.Lock()
	if had {
		c.entries[listID] = prev
	} else {
		delete(c.entries, listID)
	}
	c.mu.Unlock()
	c.notify(listID)
}

// Patch is one speculative cache write together with its inverse.
type Patch struct {
	cache  *Cache
	listID string
	prev   []model.Item
	had    bool

	once sync.Once
}

// Revert restores the ordering that was cached before the patch. Reverting twice is a
// no-op; reverting a nil patch is a no-op.
func (p *Patch) Revert() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.cache.restore(p.listID, p.prev, p.had)
	})
}
