// Package reorder implements optimistic list reordering: the move itself, speculative
// read-model patches with their inverses, persistence with rollback, and a timed undo.
package reorder

import (
	"wishlist-cli/internal/model"
)

// CanReorder reports whether items can be reordered at all (two or more items).
func CanReorder(items []model.Item) bool {
	return len(items) >= 2
}

// Move removes the item at source and reinserts it at target, renumbering every rank to
// its new zero-based index. A nil target, source == target, an out-of-range index or a
// collection of fewer than two items leaves the ordering untouched: the input slice is
// returned as-is with ok=false. The input is never mutated.
func Move(items []model.Item, source int, target *int) ([]model.Item, bool) {
	if target == nil || !CanReorder(items) {
		return items, false
	}
	dst := *target
	if source < 0 || source >= len(items) || dst < 0 || dst >= len(items) || source == dst {
		return items, false
	}

	out := make([]model.Item, 0, len(items))
	moved := items[source]
	for i, it := range items {
		if i == source {
			continue
		}
		out = append(out, it)
	}
	out = append(out, model.Item{})
	copy(out[dst+1:], out[dst:])
	out[dst] = moved
	Renumber(out)
	return out, true
}

// Renumber sets every item's SortOrder to its index.
func Renumber(items []model.Item) {
	for i := range items {
		items[i].SortOrder = i
	}
}

// Ranks returns the rank assignment of an ordering: one {id, rank} per item, rank being
// the item's zero-based position.
func Ranks(items []model.Item) []model.RankUpdate {
	out := make([]model.RankUpdate, len(items))
	for i, it := range items {
		out[i] = model.RankUpdate{ID: it.ID, Rank: i}
	}
	return out
}

// ApplyRanks returns a renumbered copy of items ordered by ranks. Items without a rank keep
// their relative order after the ranked ones; ranks naming unknown ids are ignored.
func ApplyRanks(items []model.Item, ranks []model.RankUpdate) []model.Item {
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}
	slots := make([]*model.Item, len(items))
	placed := make([]bool, len(items))
	for _, r := range ranks {
		idx, ok := byID[r.ID]
		if !ok || r.Rank < 0 || r.Rank >= len(items) || slots[r.Rank] != nil || placed[idx] {
			continue
		}
		it := items[idx]
		slots[r.Rank] = &it
		placed[idx] = true
	}

	out := make([]model.Item, 0, len(items))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	for i, it := range items {
		if !placed[i] {
			out = append(out, it)
		}
	}
	Renumber(out)
	return out
}

func indexOf(items []model.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
