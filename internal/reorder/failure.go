package reorder

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Failure is the recovery class of a persistence error.
type Failure int

const (
	FailureNone Failure = iota
	// FailureStale: the local model can no longer be trusted (403, 404). Roll back and
	// force a refresh of the authoritative source.
	FailureStale
	// FailureTransient: server error, timeout or transport failure. Roll back and offer a
	// manual retry.
	FailureTransient
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureStale:
		return "stale"
	case FailureTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// StatusCode returns the HTTP-style status carried by any error in err's chain.
func StatusCode(err error) (int, bool) {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}
	if code, ok := StatusCode(err); ok && (code == http.StatusForbidden || code == http.StatusNotFound) {
		return FailureStale
	}
	return FailureTransient
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// FailureMessage is the user-facing text for a failed order write.
func FailureMessage(err error) string {
	code, _ := StatusCode(err)
	switch {
	case code == http.StatusForbidden:
		return "You don't have permission to reorder this list. Refreshing."
	case code == http.StatusNotFound:
		return "This list changed elsewhere. Refreshing."
	case isTimeout(err):
		return "Saving the new order timed out."
	default:
		return "Couldn't save the new order."
	}
}

// UndoFailureMessage is the user-facing text for a failed undo write.
func UndoFailureMessage(err error) string {
	code, _ := StatusCode(err)
	switch {
	case code == http.StatusForbidden:
		return "You don't have permission to restore this order."
	case code == http.StatusNotFound:
		return "This list changed elsewhere; the previous order can't be restored."
	case isTimeout(err):
		return "Restoring the previous order timed out."
	default:
		return "Couldn't restore the previous order."
	}
}
