package model

import "time"

type ActorKind string

const (
	ActorKindHuman ActorKind = "human"
	ActorKindAgent ActorKind = "agent"
)

type Actor struct {
	ID     string    `json:"id"`
	Kind   ActorKind `json:"kind"`
	Name   string    `json:"name"`
	UserID *string   `json:"userId,omitempty"`
}

// List is a wishlist: an ordered gallery of items owned by one actor.
type List struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OwnerActorID string    `json:"ownerActorId"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	Archived     bool      `json:"archived"`
}

type Item struct {
	ID     string `json:"id"`
	ListID string `json:"listId"`

	// SortOrder is the item's rank among its siblings. After a settled reorder the live
	// items of a list carry exactly 0..N-1.
	SortOrder int `json:"sortOrder"`

	Title      string `json:"title"`
	Notes      string `json:"notes,omitempty"`
	URL        string `json:"url,omitempty"`
	PriceCents int64  `json:"priceCents,omitempty"`
	Archived   bool   `json:"archived"`

	OwnerActorID string    `json:"ownerActorId"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RankUpdate is one {id, rank} pair of an order write.
type RankUpdate struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	ActorID  string    `json:"actorId"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}

// CloneItems returns a shallow copy of items so callers can reorder without aliasing.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// ItemIDs returns the ids of items in order.
func ItemIDs(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
