package mutate

import (
	"errors"
	"strings"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/perm"
	"wishlist-cli/internal/store"
)

type CreateListResult struct {
	List         model.List
	EventPayload map[string]any
}

// CreateList appends a new list owned by actorID.
func CreateList(db *store.DB, s store.Store, actorID, name string) (CreateListResult, error) {
	name = strings.TrimSpace(name)
	actorID = strings.TrimSpace(actorID)
	if name == "" {
		return CreateListResult{}, errors.New("missing list name")
	}
	if _, ok := db.FindActor(actorID); !ok {
		return CreateListResult{}, NotFoundError{Kind: "actor", ID: actorID}
	}
	l := model.List{
		ID:           s.NextID(db, "list"),
		Name:         name,
		OwnerActorID: actorID,
		CreatedBy:    actorID,
		CreatedAt:    time.Now().UTC(),
	}
	db.Lists = append(db.Lists, l)
	return CreateListResult{List: l, EventPayload: map[string]any{"name": l.Name}}, nil
}

type ItemInput struct {
	Title      string
	Notes      string
	URL        string
	PriceCents int64
}

type CreateItemResult struct {
	Item         model.Item
	EventPayload map[string]any
}

// CreateItem appends a new item to the end of listID.
func CreateItem(db *store.DB, s store.Store, actorID, listID string, in ItemInput) (CreateItemResult, error) {
	actorID = strings.TrimSpace(actorID)
	listID = strings.TrimSpace(listID)
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return CreateItemResult{}, errors.New("missing item title")
	}
	l, ok := db.FindList(listID)
	if !ok || l.Archived {
		return CreateItemResult{}, NotFoundError{Kind: "list", ID: listID}
	}
	if !perm.CanEditList(db, actorID, l) {
		return CreateItemResult{}, OwnerOnlyError{ActorID: actorID, OwnerActorID: l.OwnerActorID, EntityID: listID}
	}
	now := time.Now().UTC()
	it := model.Item{
		ID:           s.NextID(db, "item"),
		ListID:       listID,
		SortOrder:    db.NextSortOrder(listID),
		Title:        in.Title,
		Notes:        strings.TrimSpace(in.Notes),
		URL:          strings.TrimSpace(in.URL),
		PriceCents:   in.PriceCents,
		OwnerActorID: actorID,
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.Items = append(db.Items, it)
	return CreateItemResult{
		Item: it,
		EventPayload: map[string]any{
			"listId":    it.ListID,
			"title":     it.Title,
			"sortOrder": it.SortOrder,
		},
	}, nil
}

type EditItemResult struct {
	Item         *model.Item
	Changed      bool
	EventPayload map[string]any
}

// ItemPatch carries optional field edits; nil fields are left unchanged.
type ItemPatch struct {
	Title      *string
	Notes      *string
	URL        *string
	PriceCents *int64
}

// EditItem applies patch to an item. Callers are responsible for saving db and appending
// the item.edit event.
func EditItem(db *store.DB, actorID, itemID string, patch ItemPatch) (EditItemResult, error) {
	itemID = strings.TrimSpace(itemID)
	it, ok := db.FindItem(itemID)
	if !ok {
		return EditItemResult{}, NotFoundError{Kind: "item", ID: itemID}
	}
	if !perm.CanEditItem(db, actorID, it) {
		return EditItemResult{}, OwnerOnlyError{ActorID: actorID, OwnerActorID: it.OwnerActorID, EntityID: itemID}
	}

	payload := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return EditItemResult{}, errors.New("missing item title")
		}
		if title != it.Title {
			it.Title = title
			payload["title"] = title
		}
	}
	if patch.Notes != nil && strings.TrimSpace(*patch.Notes) != it.Notes {
		it.Notes = strings.TrimSpace(*patch.Notes)
		payload["notes"] = it.Notes
	}
	if patch.URL != nil && strings.TrimSpace(*patch.URL) != it.URL {
		it.URL = strings.TrimSpace(*patch.URL)
		payload["url"] = it.URL
	}
	if patch.PriceCents != nil && *patch.PriceCents != it.PriceCents {
		it.PriceCents = *patch.PriceCents
		payload["priceCents"] = it.PriceCents
	}
	if len(payload) == 0 {
		return EditItemResult{Item: it}, nil
	}
	it.UpdatedAt = time.Now().UTC()
	return EditItemResult{Item: it, Changed: true, EventPayload: payload}, nil
}
