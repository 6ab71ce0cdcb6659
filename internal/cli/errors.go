package cli

import (
	"wishlist-cli/internal/mutate"
)

func errNotFound(kind, id string) error {
	return mutate.NotFoundError{Kind: kind, ID: id}
}
