package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteItemShortcut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"no args", []string{"wishlist"}, []string{"wishlist"}},
		{"item id first", []string{"wishlist", "item-abc123"}, []string{"wishlist", "items", "show", "item-abc123"}},
		{"after value flag", []string{"wishlist", "--dir", "./ws", "item-abc123"}, []string{"wishlist", "--dir", "./ws", "items", "show", "item-abc123"}},
		{"after equals flag", []string{"wishlist", "--dir=./ws", "item-abc123"}, []string{"wishlist", "--dir=./ws", "items", "show", "item-abc123"}},
		{"after bool flag", []string{"wishlist", "--pretty", "-v", "item-abc123"}, []string{"wishlist", "--pretty", "-v", "items", "show", "item-abc123"}},
		{"after double dash", []string{"wishlist", "--", "item-abc123"}, []string{"wishlist", "--", "items", "show", "item-abc123"}},
		{"flag value looks like an item", []string{"wishlist", "--actor", "item-x"}, []string{"wishlist", "--actor", "item-x"}},
		{"subcommand untouched", []string{"wishlist", "items", "show", "item-abc123"}, []string{"wishlist", "items", "show", "item-abc123"}},
		{"bare prefix untouched", []string{"wishlist", "item-"}, []string{"wishlist", "item-"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, rewriteItemShortcut(tt.in)); diff != "" {
				t.Fatalf("rewriteItemShortcut(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
