package store

import (
	"encoding/base32"

	"github.com/google/uuid"
)

var idEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// Item ids get typed by hand (`wishlist item-k3d9x2`), so they are shorter than the rest.
var idSuffixLens = map[string]int{"item": 6}

const defaultIDSuffixLen = 8

// newRandomID returns prefix-<suffix>, the suffix being lowercase base32 of the random
// leading bytes of a v4 uuid.
func newRandomID(prefix string) (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	n, ok := idSuffixLens[prefix]
	if !ok {
		n = defaultIDSuffixLen
	}
	return prefix + "-" + idEncoding.EncodeToString(u[:5])[:n], nil
}

func idExists(db *DB, id string) bool {
	if _, ok := db.FindActor(id); ok {
		return true
	}
	if _, ok := db.FindList(id); ok {
		return true
	}
	_, ok := db.FindItem(id)
	return ok
}
