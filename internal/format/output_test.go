package format

import (
	"bytes"
	"testing"
)

type sample struct {
	ID        string   `json:"id"`
	SortOrder int      `json:"sortOrder"`
	Price     int64    `json:"priceCents"`
	Tags      []string `json:"tags"`
	Gone      bool     `json:"archived"`
	Parent    *string  `json:"parent"`
}

func TestWriteEDN_KebabKeywordsAndExactNumbers(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"data": sample{ID: "item-a", SortOrder: 2, Price: 9007199254740993, Tags: []string{"x", "y"}}}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:data {:archived false :id "item-a" :parent nil :price-cents 9007199254740993 :sort-order 2 :tags ["x" "y"]}}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected edn:\n got %s\nwant %s", got, want)
	}
}

func TestWriteEDN_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"ids": []string{"a"}, "empty": []string{}}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "{\n  :empty []\n  :ids [\n    \"a\"\n  ]\n}\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty edn:\n%q\nwant\n%q", got, want)
	}
}

func TestWrite_JSONAndUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"url": "a<b"}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, want := buf.String(), `{"url":"a<b"}`+"\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if err := Write(&buf, nil, "yaml", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
