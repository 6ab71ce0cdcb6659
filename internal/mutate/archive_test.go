package mutate

import (
	"testing"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/store"
)

func strPtr(s string) *string { return &s }

func testDB() *store.DB {
	return &store.DB{
		Actors: []model.Actor{
			{ID: "act-owner", Kind: model.ActorKindHuman, Name: "Owner"},
			{ID: "act-other", Kind: model.ActorKindHuman, Name: "Other"},
		},
		Lists: []model.List{{ID: "list-1", Name: "Birthday", OwnerActorID: "act-owner"}},
		Items: []model.Item{
			{ID: "item-1", ListID: "list-1", SortOrder: 0, Title: "A", OwnerActorID: "act-owner"},
			{ID: "item-2", ListID: "list-1", SortOrder: 1, Title: "B", OwnerActorID: "act-owner"},
			{ID: "item-3", ListID: "list-1", SortOrder: 2, Title: "C", OwnerActorID: "act-owner"},
		},
	}
}

func TestSetItemArchived(t *testing.T) {
	db := testDB()

	if _, err := SetItemArchived(db, "act-other", "item-1", true); err == nil {
		t.Fatalf("expected error")
	}

	res, err := SetItemArchived(db, "act-owner", "item-1", true)
	if err != nil {
		t.Fatalf("SetItemArchived error: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	if !res.Item.Archived {
		t.Fatalf("expected archived=true")
	}

	// No-op
	res2, err := SetItemArchived(db, "act-owner", "item-1", true)
	if err != nil {
		t.Fatalf("SetItemArchived no-op error: %v", err)
	}
	if res2.Changed {
		t.Fatalf("expected changed=false")
	}
}

func TestSetItemArchived_RenumbersRemainingItems(t *testing.T) {
	db := testDB()
	if _, err := SetItemArchived(db, "act-owner", "item-1", true); err != nil {
		t.Fatalf("archive: %v", err)
	}
	live := db.ListItems("list-1")
	for rank, it := range live {
		if it.SortOrder != rank {
			t.Fatalf("expected contiguous ranks, got %+v", live)
		}
	}

	if _, err := SetItemArchived(db, "act-owner", "item-1", false); err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	live = db.ListItems("list-1")
	if got := model.ItemIDs(live); len(got) != 3 || got[2] != "item-1" {
		t.Fatalf("expected restored item at the end, got %v", got)
	}
	for rank, it := range live {
		if it.SortOrder != rank {
			t.Fatalf("expected contiguous ranks, got %+v", live)
		}
	}
}
