package reorder

import (
	"time"

	"wishlist-cli/internal/model"

	"github.com/google/uuid"
)

const (
	errorToastDuration = 8 * time.Second
	infoToastDuration  = 2 * time.Second
)

type FlightKind string

const (
	FlightReorder FlightKind = "reorder"
	FlightUndo    FlightKind = "undo"
)

// Flight is one in-flight order write. Done closes once the outcome has been applied to
// the controller (settled or rolled back).
type Flight struct {
	Kind   FlightKind
	ListID string
	Ranks  []model.RankUpdate

	applied []model.Item
	done    chan struct{}
	err     error
}

func newFlight(kind FlightKind, listID string, ranks []model.RankUpdate, applied []model.Item) *Flight {
	return &Flight{
		Kind:    kind,
		ListID:  listID,
		Ranks:   append([]model.RankUpdate(nil), ranks...),
		applied: model.CloneItems(applied),
		done:    make(chan struct{}),
	}
}

func (f *Flight) finish(err error) {
	f.err = err
	close(f.done)
}

// Done is closed when the flight has been handled. A nil flight is always done.
func (f *Flight) Done() <-chan struct{} {
	if f == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return f.done
}

// Wait blocks until the flight is handled and returns the write error, if any.
func (f *Flight) Wait() error {
	if f == nil {
		return nil
	}
	<-f.done
	return f.err
}

func newToastID() string { return "toast-" + uuid.NewString() }
