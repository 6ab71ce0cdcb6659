package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/store"
)

func testDB() *store.DB {
	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	return &store.DB{
		Version: 1,
		Actors:  []model.Actor{{ID: "act-1", Kind: model.ActorKindHuman, Name: "Human"}},
		Lists:   []model.List{{ID: "list-1", Name: "Birthday", OwnerActorID: "act-1", CreatedAt: now}},
		Items: []model.Item{
			{ID: "item-b", ListID: "list-1", SortOrder: 1, Title: "Book_2", PriceCents: 1250, Notes: "Hardcover.", CreatedAt: now},
			{ID: "item-a", ListID: "list-1", SortOrder: 0, Title: "Lamp", URL: "https://example.com/lamp", CreatedAt: now},
			{ID: "item-x", ListID: "list-1", SortOrder: 2, Title: "Gone", Archived: true, CreatedAt: now},
		},
	}
}

func TestRenderListMarkdown_FollowsStoredOrder(t *testing.T) {
	t.Parallel()

	md, err := RenderListMarkdown(testDB(), "list-1", RenderOptions{IncludeNotes: true})
	if err != nil {
		t.Fatalf("RenderListMarkdown: %v", err)
	}
	want := strings.Join([]string{
		"# Birthday",
		"",
		"1. [Lamp](https://example.com/lamp)",
		`2. Book\_2 · $12.50`,
		"   Hardcover.",
		"",
		"Total: $12.50",
		"",
	}, "\n")
	if md != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", md, want)
	}
}

func TestRenderListMarkdown_UnknownList(t *testing.T) {
	t.Parallel()
	if _, err := RenderListMarkdown(testDB(), "list-nope", RenderOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteList_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteList(testDB(), "list-1", dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	wantPath := filepath.Join(dir, "lists", "list-1.md")
	if len(res.Written) != 1 || res.Written[0] != wantPath || res.Bytes == 0 {
		t.Fatalf("unexpected written paths: %#v", res.Written)
	}
	if b, err := os.ReadFile(wantPath); err != nil || !strings.HasPrefix(string(b), "# Birthday") {
		t.Fatalf("unexpected file: %q (%v)", b, err)
	}

	if _, err := WriteList(testDB(), "list-1", dir, WriteOptions{}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := WriteList(testDB(), "list-1", dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("WriteList overwrite: %v", err)
	}
}
