package mutate

import (
	"fmt"
	"net/http"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e NotFoundError) StatusCode() int { return http.StatusNotFound }

type OwnerOnlyError struct {
	ActorID      string
	OwnerActorID string
	EntityID     string
}

func (e OwnerOnlyError) Error() string {
	// Keep this generic; CLI/TUI can wrap with more specific phrasing.
	return "owner-only"
}

func (e OwnerOnlyError) StatusCode() int { return http.StatusForbidden }

// InvalidOrderError is returned when a rank write is not a permutation of the list's
// live items over 0..N-1.
type InvalidOrderError struct {
	ListID string
	Reason string
}

func (e InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order for %s: %s", e.ListID, e.Reason)
}

func (e InvalidOrderError) StatusCode() int { return http.StatusBadRequest }
