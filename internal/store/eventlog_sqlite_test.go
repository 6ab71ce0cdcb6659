package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSQLiteEventLog_AppendAndRead(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()
	before := AppendEventCount()

	if err := s.AppendEvent("act-a", "item.create", "item-1", map[string]any{"id": "item-1"}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := s.AppendEvent("act-a", "list.reorder", "list-1", map[string]any{"ids": []string{"item-1"}}); err != nil {
		t.Fatalf("append 2: %v", err)
	}
	if got := AppendEventCount() - before; got != 2 {
		t.Fatalf("expected append count +2, got %d", got)
	}

	evs, err := s.ReadEvents(ctx, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if !strings.HasPrefix(evs[0].ID, "evt-") || evs[0].Type != "item.create" {
		t.Fatalf("unexpected first event: %+v", evs[0])
	}
	if evs[1].TS.IsZero() || time.Since(evs[1].TS) > time.Minute {
		t.Fatalf("unexpected timestamp: %v", evs[1].TS)
	}

	forList, err := s.ReadEventsForEntity(ctx, "list-1", 10)
	if err != nil {
		t.Fatalf("read entity: %v", err)
	}
	if len(forList) != 1 || forList[0].Type != "list.reorder" {
		t.Fatalf("unexpected entity events: %+v", forList)
	}
}

func TestSQLiteEventLog_RejectsIncompleteEvents(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.AppendEvent("", "item.create", "item-1", nil); err == nil {
		t.Fatalf("expected error for missing actor")
	}
	if err := s.AppendEvent("act-a", " ", "item-1", nil); err == nil {
		t.Fatalf("expected error for missing type")
	}
}
