package mutate

import (
	"fmt"
	"strings"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/perm"
	"wishlist-cli/internal/store"
)

type OrderResult struct {
	List         *model.List
	Ranks        []model.RankUpdate
	Changed      bool
	EventPayload map[string]any
}

// ValidateRanks checks that ranks assign every live item of the list exactly one of
// 0..N-1.
func ValidateRanks(listID string, live []model.Item, ranks []model.RankUpdate) error {
	if len(ranks) != len(live) {
		return InvalidOrderError{ListID: listID, Reason: fmt.Sprintf("expected %d ranks, got %d", len(live), len(ranks))}
	}
	known := make(map[string]bool, len(live))
	for _, it := range live {
		known[it.ID] = true
	}
	seenID := make(map[string]bool, len(ranks))
	seenRank := make([]bool, len(ranks))
	for _, r := range ranks {
		id := strings.TrimSpace(r.ID)
		if !known[id] {
			return InvalidOrderError{ListID: listID, Reason: "unknown item " + id}
		}
		if seenID[id] {
			return InvalidOrderError{ListID: listID, Reason: "duplicate item " + id}
		}
		seenID[id] = true
		if r.Rank < 0 || r.Rank >= len(ranks) {
			return InvalidOrderError{ListID: listID, Reason: fmt.Sprintf("rank %d out of range", r.Rank)}
		}
		if seenRank[r.Rank] {
			return InvalidOrderError{ListID: listID, Reason: fmt.Sprintf("duplicate rank %d", r.Rank)}
		}
		seenRank[r.Rank] = true
	}
	return nil
}

// ApplyOrder assigns ranks to the live items of listID in db. It enforces permissions via
// internal/perm. Callers are responsible for persisting (store.WriteRanks or Save) and
// appending the list.reorder event.
func ApplyOrder(db *store.DB, actorID, listID string, ranks []model.RankUpdate) (OrderResult, error) {
	listID = strings.TrimSpace(listID)
	actorID = strings.TrimSpace(actorID)
	if db == nil {
		return OrderResult{}, nil
	}
	l, ok := db.FindList(listID)
	if !ok || l.Archived {
		return OrderResult{}, NotFoundError{Kind: "list", ID: listID}
	}
	if !perm.CanEditList(db, actorID, l) {
		return OrderResult{}, OwnerOnlyError{ActorID: actorID, OwnerActorID: l.OwnerActorID, EntityID: listID}
	}

	live := db.ListItems(listID)
	for _, r := range ranks {
		if _, ok := db.FindItem(strings.TrimSpace(r.ID)); !ok {
			return OrderResult{}, NotFoundError{Kind: "item", ID: r.ID}
		}
	}
	if err := ValidateRanks(listID, live, ranks); err != nil {
		return OrderResult{}, err
	}

	now := time.Now().UTC()
	changed := false
	ids := make([]string, len(ranks))
	for _, r := range ranks {
		it, _ := db.FindItem(strings.TrimSpace(r.ID))
		if it.SortOrder != r.Rank {
			it.SortOrder = r.Rank
			it.UpdatedAt = now
			changed = true
		}
		ids[r.Rank] = it.ID
	}
	return OrderResult{
		List:    l,
		Ranks:   ranks,
		Changed: changed,
		EventPayload: map[string]any{
			"ids": ids,
		},
	}, nil
}
