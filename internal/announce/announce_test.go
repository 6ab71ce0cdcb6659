package announce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToEverySubscriber(t *testing.T) {
	b := NewBus(4)
	a, cancelA := b.Subscribe()
	defer cancelA()
	c, cancelC := b.Subscribe()
	defer cancelC()

	b.Publish(Announcement{Kind: KindDragStart, ItemID: "item-a", Message: "Picked up A."})

	got := <-a
	assert.Equal(t, KindDragStart, got.Kind)
	assert.False(t, got.At.IsZero())
	assert.Equal(t, "Picked up A.", (<-c).Message)
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBus(1)
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(Announcement{Kind: KindDragOver, Position: 1})
	b.Publish(Announcement{Kind: KindDragOver, Position: 2})

	got := <-ch
	assert.Equal(t, 1, got.Position)
	select {
	case extra := <-ch:
		t.Fatalf("expected dropped announcement, got %+v", extra)
	default:
	}
}

func TestBus_CancelAndClose(t *testing.T) {
	b := NewBus(2)
	ch, cancel := b.Subscribe()
	cancel()
	_, ok := <-ch
	require.False(t, ok, "cancel should close the channel")
	cancel()

	other, _ := b.Subscribe()
	b.Close()
	_, ok = <-other
	require.False(t, ok, "close should close subscriber channels")

	late, _ := b.Subscribe()
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")
	b.Publish(Announcement{Kind: KindCancel})
}

func TestBus_NilPublishIsNoop(t *testing.T) {
	var b *Bus
	b.Publish(Announcement{Kind: KindCancel})
}
