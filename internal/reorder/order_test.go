package reorder

import (
	"fmt"
	"testing"

	"wishlist-cli/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(i int) *int { return &i }

func makeItems(n int) []model.Item {
	out := make([]model.Item, n)
	for i := range out {
		id := string(rune('a' + i))
		out[i] = model.Item{ID: "item-" + id, ListID: "list-1", SortOrder: i, Title: string(rune('A' + i))}
	}
	return out
}

func TestMove_RenumbersAndPlacesMovedItem(t *testing.T) {
	for n := 2; n <= 6; n++ {
		for src := 0; src < n; src++ {
			for dst := 0; dst < n; dst++ {
				if src == dst {
					continue
				}
				t.Run(fmt.Sprintf("n%d_%d_to_%d", n, src, dst), func(t *testing.T) {
					in := makeItems(n)
					before := model.CloneItems(in)

					out, ok := Move(in, src, intPtr(dst))
					require.True(t, ok)
					require.Len(t, out, n)

					for i, it := range out {
						assert.Equal(t, i, it.SortOrder, "rank at %d", i)
					}
					assert.Equal(t, before[src].ID, out[dst].ID, "moved item lands at target")

					// Everyone else keeps relative order.
					var restIn, restOut []string
					for i, it := range before {
						if i != src {
							restIn = append(restIn, it.ID)
						}
					}
					for i, it := range out {
						if i != dst {
							restOut = append(restOut, it.ID)
						}
					}
					if diff := cmp.Diff(restIn, restOut); diff != "" {
						t.Fatalf("relative order changed (-want +got):\n%s", diff)
					}
					if diff := cmp.Diff(before, in); diff != "" {
						t.Fatalf("input mutated (-want +got):\n%s", diff)
					}
				})
			}
		}
	}
}

func TestMove_NoopCasesReturnInput(t *testing.T) {
	in := makeItems(3)
	cases := []struct {
		name   string
		items  []model.Item
		source int
		target *int
	}{
		{name: "nil target", items: in, source: 0, target: nil},
		{name: "same position", items: in, source: 1, target: intPtr(1)},
		{name: "source out of range", items: in, source: 3, target: intPtr(0)},
		{name: "negative target", items: in, source: 0, target: intPtr(-1)},
		{name: "target out of range", items: in, source: 0, target: intPtr(3)},
		{name: "single item", items: in[:1], source: 0, target: intPtr(0)},
		{name: "empty", items: nil, source: 0, target: intPtr(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, ok := Move(tc.items, tc.source, tc.target)
			assert.False(t, ok)
			assert.Equal(t, tc.items, out)
			if len(tc.items) > 0 {
				assert.Same(t, &tc.items[0], &out[0], "no-op returns the same backing array")
			}
		})
	}
}

func TestMove_ExampleScenario(t *testing.T) {
	out, ok := Move(makeItems(3), 0, intPtr(2))
	require.True(t, ok)
	assert.Equal(t, []string{"item-b", "item-c", "item-a"}, model.ItemIDs(out))
	assert.Equal(t, []model.RankUpdate{{ID: "item-b", Rank: 0}, {ID: "item-c", Rank: 1}, {ID: "item-a", Rank: 2}}, Ranks(out))
}

func TestCanReorder(t *testing.T) {
	assert.False(t, CanReorder(nil))
	assert.False(t, CanReorder(makeItems(1)))
	assert.True(t, CanReorder(makeItems(2)))
}

func TestApplyRanks(t *testing.T) {
	items := makeItems(4)
	ranks := []model.RankUpdate{{ID: "item-d", Rank: 0}, {ID: "item-b", Rank: 1}, {ID: "item-zzz", Rank: 2}}

	got := ApplyRanks(items, ranks)
	assert.Equal(t, []string{"item-d", "item-b", "item-a", "item-c"}, model.ItemIDs(got))
	for i, it := range got {
		assert.Equal(t, i, it.SortOrder)
	}
	assert.Equal(t, 3, items[3].SortOrder, "input untouched")

	round := ApplyRanks(makeItems(3), Ranks(got[:3]))
	assert.Equal(t, []string{"item-b", "item-a", "item-c"}, model.ItemIDs(round))
}
