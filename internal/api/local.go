package api

import (
	"context"
	"strings"
	"sync"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/mutate"
	"wishlist-cli/internal/store"

	"go.uber.org/zap"
)

// LocalPersister writes orders straight into a workspace store. It is the durable side of
// PUT /lists/{id}/order and the persister the CLI uses without --server.
type LocalPersister struct {
	Store   store.Store
	ActorID string
	Logger  *zap.Logger

	// OnWrite, when set, is called after every successful order write.
	OnWrite func(listID string)

	mu sync.Mutex
}

func (p *LocalPersister) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// PersistOrder validates ranks against the current list (permission 403, missing 404,
// not a permutation 400) and writes them in one transaction.
func (p *LocalPersister) PersistOrder(ctx context.Context, listID string, ranks []model.RankUpdate) error {
	return p.PersistOrderAs(ctx, p.ActorID, listID, ranks)
}

func (p *LocalPersister) PersistOrderAs(ctx context.Context, actorID, listID string, ranks []model.RankUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	listID = strings.TrimSpace(listID)
	db, err := p.Store.LoadContext(ctx)
	if err != nil {
		return err
	}
	res, err := mutate.ApplyOrder(db, actorID, listID, ranks)
	if err != nil {
		return err
	}
	if !res.Changed {
		return nil
	}
	if err := p.Store.WriteRanks(ctx, listID, ranks); err != nil {
		return err
	}
	if err := p.Store.AppendEventContext(ctx, actorID, "list.reorder", listID, res.EventPayload); err != nil {
		// The order is durable; a missing audit row is not worth failing the write.
		p.log().Warn("append reorder event failed", zap.String("list", listID), zap.Error(err))
	}
	p.log().Info("order written", zap.String("list", listID), zap.String("actor", actorID), zap.Int("items", len(ranks)))
	if p.OnWrite != nil {
		p.OnWrite(listID)
	}
	return nil
}

// ListItems loads the live items of listID in display order (404 when the list is gone).
func (p *LocalPersister) ListItems(ctx context.Context, listID string) ([]model.Item, error) {
	db, err := p.Store.LoadContext(ctx)
	if err != nil {
		return nil, err
	}
	l, ok := db.FindList(strings.TrimSpace(listID))
	if !ok || l.Archived {
		return nil, mutate.NotFoundError{Kind: "list", ID: listID}
	}
	return db.ListItems(l.ID), nil
}
