package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/reorder"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpErr int

func (e httpErr) Error() string   { return fmt.Sprintf("server returned %d", int(e)) }
func (e httpErr) StatusCode() int { return int(e) }

type persistRecorder struct {
	mu    sync.Mutex
	calls [][]model.RankUpdate
	errs  []error
}

func (p *persistRecorder) PersistOrder(_ context.Context, _ string, ranks []model.RankUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, append([]model.RankUpdate(nil), ranks...))
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

func (p *persistRecorder) Calls() [][]model.RankUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]model.RankUpdate(nil), p.calls...)
}

func galleryItems(titles ...string) []model.Item {
	out := make([]model.Item, 0, len(titles))
	for i, title := range titles {
		id := "item-" + strings.ToLower(title)
		out = append(out, model.Item{ID: id, ListID: "list-1", SortOrder: i, Title: title, PriceCents: int64(100 * (i + 1))})
	}
	return out
}

func newTestGallery(t *testing.T, items []model.Item, p *persistRecorder, loader reorder.Loader) galleryModel {
	t.Helper()
	m := newGalleryModel(context.Background(), Options{
		ListID:    "list-1",
		Title:     "Birthday",
		Items:     items,
		Persister: p,
		Loader:    loader,
		Clock:     reorder.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
	})
	t.Cleanup(m.close)
	return m
}

func press(t *testing.T, m galleryModel, k string) (galleryModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	mAny, cmd := m.Update(msg)
	return mAny.(galleryModel), cmd
}

// drain feeds every pending toast, announcement and cache notification back into the model.
func drain(m galleryModel) galleryModel {
	for {
		var msg tea.Msg
		select {
		case ev := <-m.toaster.ch:
			msg = toastMsg(ev)
		case a := <-m.announcements:
			msg = announceMsg(a)
		case id := <-m.cacheChanges:
			msg = cacheChangedMsg{listID: id}
		default:
			return m
		}
		mAny, _ := m.Update(msg)
		m = mAny.(galleryModel)
	}
}

func waitLast(t *testing.T, m galleryModel) error {
	t.Helper()
	require.NotNil(t, m.lastFlight)
	select {
	case <-m.lastFlight.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("flight did not finish")
	}
	return m.lastFlight.Wait()
}

func TestGallery_DragDropThenUndo(t *testing.T) {
	p := &persistRecorder{}
	m := newTestGallery(t, galleryItems("Lamp", "Book", "Kite"), p, nil)

	m, _ = press(t, m, "space")
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")
	assert.Equal(t, reorder.StateDragging, m.ctrl.State())

	view := m.View()
	assert.Less(t, strings.Index(view, "Book"), strings.Index(view, "Lamp"), "preview shows the landing position")
	assert.Equal(t, []string{"item-lamp", "item-book", "item-kite"}, model.ItemIDs(m.ctrl.Items()), "dragging never mutates")

	m, cmd := press(t, m, "space")
	require.NotNil(t, cmd)
	require.NoError(t, waitLast(t, m))
	m = drain(m)

	assert.Equal(t, []string{"item-book", "item-kite", "item-lamp"}, model.ItemIDs(m.ctrl.Items()))
	require.Len(t, p.Calls(), 1)
	assert.Equal(t, []model.RankUpdate{{ID: "item-book", Rank: 0}, {ID: "item-kite", Rank: 1}, {ID: "item-lamp", Rank: 2}}, p.Calls()[0])

	view = m.View()
	assert.Contains(t, view, "Order saved.")
	assert.Contains(t, view, "u Undo (5s)")
	assert.Contains(t, m.status, "New order saved.")

	m, _ = press(t, m, "u")
	require.NoError(t, waitLast(t, m))
	m = drain(m)
	assert.Equal(t, []string{"item-lamp", "item-book", "item-kite"}, model.ItemIDs(m.ctrl.Items()))
	assert.Contains(t, m.View(), "Order restored.")
	assert.NotContains(t, m.View(), "Undo (", "the undo action disappears once used")
}

func TestGallery_FailureOffersRetry(t *testing.T) {
	p := &persistRecorder{errs: []error{httpErr(500)}}
	m := newTestGallery(t, galleryItems("Lamp", "Book", "Kite"), p, nil)

	m, _ = press(t, m, "space")
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "space")
	require.Error(t, waitLast(t, m))
	m = drain(m)

	assert.Equal(t, reorder.StateRolledBack, m.ctrl.State())
	assert.Equal(t, []string{"item-lamp", "item-book", "item-kite"}, model.ItemIDs(m.ctrl.Items()))
	view := m.View()
	assert.Contains(t, view, "Couldn't save the new order.")
	assert.Contains(t, view, "R Retry")

	m, _ = press(t, m, "R")
	require.NoError(t, waitLast(t, m))
	m = drain(m)

	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1], "retry re-issues the same ranks")
	assert.Equal(t, []string{"item-book", "item-lamp", "item-kite"}, model.ItemIDs(m.ctrl.Items()))
	assert.NotContains(t, m.View(), "R Retry")
}

func TestGallery_EscCancelsWithoutWriting(t *testing.T) {
	p := &persistRecorder{}
	m := newTestGallery(t, galleryItems("Lamp", "Book", "Kite"), p, nil)

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "space")
	m, _ = press(t, m, "up")
	m, _ = press(t, m, "esc")
	m = drain(m)

	assert.Equal(t, reorder.StateIdle, m.ctrl.State())
	assert.Equal(t, 1, m.cursor)
	assert.Empty(t, p.Calls())
	assert.Contains(t, m.status, "Movement cancelled.")
}

func TestGallery_SingleItemCannotBePicked(t *testing.T) {
	m := newTestGallery(t, galleryItems("Lamp"), &persistRecorder{}, nil)
	m, _ = press(t, m, "space")
	assert.Equal(t, reorder.StateIdle, m.ctrl.State())
	assert.Equal(t, "Add another item to reorder this list.", m.status)
}

func TestGallery_ReloadAppliesAuthoritativeOrder(t *testing.T) {
	fresh := galleryItems("Kite", "Lamp", "Book")
	loader := func(context.Context, string) ([]model.Item, error) { return fresh, nil }
	m := newTestGallery(t, galleryItems("Lamp", "Book", "Kite"), &persistRecorder{}, loader)

	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	mAny, _ := m.Update(m.reload()())
	m = drain(mAny.(galleryModel))

	assert.Equal(t, model.ItemIDs(fresh), model.ItemIDs(m.ctrl.Items()))
	assert.Equal(t, 0, m.cache.Refreshes("list-1"), "a reload is not a forced refresh")
	assert.False(t, m.cache.Stale("list-1"))
}

func TestGallery_ReloadErrorShowsStatus(t *testing.T) {
	loader := func(context.Context, string) ([]model.Item, error) { return nil, errors.New("disk gone") }
	m := newTestGallery(t, galleryItems("Lamp", "Book"), &persistRecorder{}, loader)
	mAny, _ := m.Update(m.reload()())
	m = mAny.(galleryModel)
	assert.Equal(t, "Reload failed: disk gone", m.status)
}

func TestGallery_QuitClosesController(t *testing.T) {
	m := newTestGallery(t, galleryItems("Lamp", "Book"), &persistRecorder{}, nil)
	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.ctrl.BeginDrag("item-lamp"), reorder.ErrClosed)
	assert.Empty(t, m.View())
}

func TestRenderRow_FitsWidth(t *testing.T) {
	it := model.Item{Title: strings.Repeat("Very long title ", 10), PriceCents: 123456}
	for _, w := range []int{10, 20, 40, 80} {
		row := renderRow(it, 0, w, newStyles().row, "›")
		assert.Equal(t, w, xansi.StringWidth(row), "width %d", w)
	}
	assert.Contains(t, renderRow(it, 0, 80, newStyles().row, " "), "$1234.56")
	assert.Equal(t, "", formatPrice(0))
	assert.Equal(t, "$0.05", formatPrice(5))
}

func TestGallery_RetryWorksWhenTheToastWasDropped(t *testing.T) {
	p := &persistRecorder{errs: []error{httpErr(503)}}
	m := newTestGallery(t, galleryItems("Lamp", "Book", "Kite"), p, nil)

	m, _ = press(t, m, "space")
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "space")
	require.Error(t, waitLast(t, m))
	// Simulate a full toaster: the error toast never reaches the model.
	for len(m.toaster.ch) > 0 {
		<-m.toaster.ch
	}
	assert.Empty(t, m.toasts)

	m, cmd := press(t, m, "R")
	require.NotNil(t, cmd)
	require.NoError(t, waitLast(t, m))
	assert.Equal(t, []string{"item-book", "item-lamp", "item-kite"}, model.ItemIDs(m.ctrl.Items()))
	assert.Len(t, p.Calls(), 2)
}
