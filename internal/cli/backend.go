package cli

import (
	"context"
	"strings"

	"wishlist-cli/internal/api"
	"wishlist-cli/internal/model"
	"wishlist-cli/internal/reorder"
	"wishlist-cli/internal/store"

	"go.uber.org/zap"
)

// orderBackend is where order writes go and authoritative orderings come from: the local
// workspace, or a `wishlist serve` instance when a server URL is configured.
type orderBackend struct {
	persister reorder.Persister
	loader    reorder.Loader
	// changes opens a change signal for listID; nil when the backend cannot report them.
	changes func(ctx context.Context, listID string) (<-chan struct{}, error)
	remote  string
}

func newOrderBackend(app *App, s store.Store, actorID, serverURL string) orderBackend {
	serverURL = strings.TrimSpace(serverURL)
	if serverURL == "" {
		serverURL = strings.TrimSpace(app.config().Remote.URL)
	}
	if serverURL != "" {
		c := api.NewClient(serverURL, actorID, app.config().GetRemoteTimeout())
		return orderBackend{
			persister: c,
			loader:    c.ListItems,
			changes: func(ctx context.Context, listID string) (<-chan struct{}, error) {
				evs, err := c.Stream(ctx, listID)
				if err != nil {
					return nil, err
				}
				return streamSignals(evs), nil
			},
			remote: c.BaseURL,
		}
	}

	lp := &api.LocalPersister{Store: s, ActorID: actorID, Logger: app.logger()}
	return orderBackend{
		persister: lp,
		loader:    lp.ListItems,
		changes: func(ctx context.Context, _ string) (<-chan struct{}, error) {
			return s.Watch(ctx, 0)
		},
	}
}

// streamSignals turns server change events into bare reload signals.
func streamSignals(evs <-chan api.ChangeEvent) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range evs {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out
}

// newListController builds a controller over the backend's current ordering of listID.
func newListController(ctx context.Context, app *App, b orderBackend, listID string, toaster reorder.Toaster) (*reorder.Controller, *reorder.Cache, error) {
	items, err := b.loader(ctx, listID)
	if err != nil {
		return nil, nil, err
	}
	cache := reorder.NewCache(b.loader, app.logger())
	cache.Set(listID, items)
	ctrl := reorder.NewController(reorder.Config{
		ListID:         listID,
		Items:          items,
		Persister:      b.persister,
		Cache:          cache,
		Toaster:        toaster,
		Logger:         app.logger().With(zap.String("list", listID)),
		UndoWindow:     app.config().GetUndoWindow(),
		PersistTimeout: app.config().GetPersistTimeout(),
	})
	return ctrl, cache, nil
}

func positionOf(items []model.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
