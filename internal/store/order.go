package store

import (
	"sort"
	"strings"

	"wishlist-cli/internal/model"
)

// SortItems sorts items in place in display order: sort order, then CreatedAt, then ID.
// The tie-breakers keep the order stable while a list still carries duplicate ranks
// (e.g. items imported before their first reorder).
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return compareItems(items[i], items[j]) < 0
	})
}

func compareItems(a, b model.Item) int {
	if a.SortOrder != b.SortOrder {
		if a.SortOrder < b.SortOrder {
			return -1
		}
		return 1
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// NextSortOrder returns the rank for an item appended to the end of listID.
func (db *DB) NextSortOrder(listID string) int {
	next := 0
	for _, it := range db.Items {
		if it.ListID != listID || it.Archived {
			continue
		}
		if it.SortOrder >= next {
			next = it.SortOrder + 1
		}
	}
	return next
}
