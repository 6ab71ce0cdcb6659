package mutate

import (
	"strings"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/perm"
	"wishlist-cli/internal/store"
)

type ArchiveResult struct {
	Item         *model.Item
	Changed      bool
	EventPayload map[string]any
}

// SetItemArchived sets item.Archived and renumbers the list's remaining live items to
// 0..N-1 so ranks stay contiguous. It enforces permissions via internal/perm.
// Callers are responsible for saving db and appending the item.archive event.
func SetItemArchived(db *store.DB, actorID, itemID string, archived bool) (ArchiveResult, error) {
	itemID = strings.TrimSpace(itemID)
	actorID = strings.TrimSpace(actorID)
	if db == nil || itemID == "" || actorID == "" {
		return ArchiveResult{}, nil
	}

	it, ok := db.FindItem(itemID)
	if !ok {
		return ArchiveResult{}, NotFoundError{Kind: "item", ID: itemID}
	}
	if !perm.CanEditItem(db, actorID, it) {
		return ArchiveResult{}, OwnerOnlyError{ActorID: actorID, OwnerActorID: it.OwnerActorID, EntityID: itemID}
	}
	if it.Archived == archived {
		return ArchiveResult{Item: it, Changed: false}, nil
	}
	now := time.Now().UTC()
	if archived {
		it.SortOrder = 0
	} else {
		// Restored items go to the end of the list.
		it.SortOrder = db.NextSortOrder(it.ListID)
	}
	it.Archived = archived
	it.UpdatedAt = now
	renumberLive(db, it.ListID, now)
	return ArchiveResult{
		Item:    it,
		Changed: true,
		EventPayload: map[string]any{
			"archived": it.Archived,
		},
	}, nil
}

func renumberLive(db *store.DB, listID string, now time.Time) {
	for rank, live := range db.ListItems(listID) {
		it, _ := db.FindItem(live.ID)
		if it.SortOrder != rank {
			it.SortOrder = rank
			it.UpdatedAt = now
		}
	}
}
