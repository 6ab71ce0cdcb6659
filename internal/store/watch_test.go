package store

import (
	"context"
	"testing"
	"time"
)

func TestWatch_SignalsOnDatabaseWrite(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Save(seedDB(time.Now().UTC())); err != nil {
		t.Fatalf("save: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Watch(ctx, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := s.AppendEvent("act-a", "item.create", "item-x", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a change signal")
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("expected channel to close after cancel")
	}
}
