package perm

import (
	"strings"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/store"
)

// CanEditList enforces wishlist ownership rules for mutating a list (including its order).
//
// Rules:
//   - The owner can edit.
//   - A human can edit lists owned by their own agents.
//   - An agent can edit lists owned by the human it belongs to.
func CanEditList(db *store.DB, actorID string, l *model.List) bool {
	if db == nil || l == nil {
		return false
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return false
	}
	if l.OwnerActorID == actorID {
		return true
	}
	actorHuman, ok := db.HumanUserIDForActor(actorID)
	if !ok || actorHuman == "" {
		return false
	}
	ownerHuman, ok := db.HumanUserIDForActor(l.OwnerActorID)
	return ok && ownerHuman == actorHuman
}

// CanEditItem applies the list rules to the item's list; the item owner may always edit it.
func CanEditItem(db *store.DB, actorID string, it *model.Item) bool {
	if db == nil || it == nil {
		return false
	}
	if strings.TrimSpace(actorID) != "" && it.OwnerActorID == strings.TrimSpace(actorID) {
		return true
	}
	l, ok := db.FindList(it.ListID)
	if !ok {
		return false
	}
	return CanEditList(db, actorID, l)
}
