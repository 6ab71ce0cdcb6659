package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wishlist-cli/internal/announce"
	"wishlist-cli/internal/model"
	"wishlist-cli/internal/reorder"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const countdownInterval = 250 * time.Millisecond

type toastMsg toastEvent

type announceMsg announce.Announcement

type cacheChangedMsg struct{ listID string }

type externalChangeMsg struct{}

type reloadedMsg struct{ err error }

type flightDoneMsg struct {
	kind reorder.FlightKind
	err  error
}

type toastExpiredMsg struct{ id string }

type countdownTickMsg struct{ seq int }

type galleryModel struct {
	ctx    context.Context
	listID string
	title  string
	log    *zap.Logger

	ctrl    *reorder.Controller
	cache   *reorder.Cache
	toaster *chanToaster

	announcements <-chan announce.Announcement
	cacheChanges  <-chan string
	changes       <-chan struct{}
	unsubscribe   []func()

	keys  keyMap
	help  help.Model
	st    styles
	width int
	high  int

	cursor       int
	toasts       []reorder.Toast
	status       string
	countdownSeq int
	lastFlight   *reorder.Flight
	quitting     bool
}

func newGalleryModel(ctx context.Context, o Options) galleryModel {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	bus := o.Bus
	if bus == nil {
		bus = announce.NewBus(64)
	}
	cache := reorder.NewCache(o.Loader, log)
	cache.Set(o.ListID, o.Items)
	toaster := newChanToaster(32)

	ctrl := reorder.NewController(reorder.Config{
		ListID:         o.ListID,
		Items:          o.Items,
		Persister:      o.Persister,
		Cache:          cache,
		Toaster:        toaster,
		Bus:            bus,
		Clock:          o.Clock,
		Logger:         log,
		UndoWindow:     o.UndoWindow,
		PersistTimeout: o.PersistTimeout,
	})

	annCh, annCancel := bus.Subscribe()
	cacheCh, cacheCancel := cache.Subscribe()

	h := help.New()
	h.ShowAll = false

	title := strings.TrimSpace(o.Title)
	if title == "" {
		title = o.ListID
	}
	return galleryModel{
		ctx:           ctx,
		listID:        o.ListID,
		title:         title,
		log:           log,
		ctrl:          ctrl,
		cache:         cache,
		toaster:       toaster,
		announcements: annCh,
		cacheChanges:  cacheCh,
		changes:       o.Changes,
		unsubscribe:   []func(){annCancel, cacheCancel},
		keys:          defaultKeyMap(),
		help:          h,
		st:            newStyles(),
		width:         80,
		high:          24,
	}
}

func (m galleryModel) Init() tea.Cmd {
	return tea.Batch(
		waitToast(m.toaster.ch),
		waitAnnouncement(m.announcements),
		waitCacheChange(m.cacheChanges),
		waitExternalChange(m.changes),
	)
}

func waitToast(ch <-chan toastEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(ev)
	}
}

func waitAnnouncement(ch <-chan announce.Announcement) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		a, ok := <-ch
		if !ok {
			return nil
		}
		return announceMsg(a)
	}
}

func waitCacheChange(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		id, ok := <-ch
		if !ok {
			return nil
		}
		return cacheChangedMsg{listID: id}
	}
}

func waitExternalChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return externalChangeMsg{}
	}
}

func waitFlight(f *reorder.Flight) tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		err := f.Wait()
		return flightDoneMsg{kind: f.Kind, err: err}
	}
}

func (m galleryModel) reload() tea.Cmd {
	cache, ctx, listID := m.cache, m.ctx, m.listID
	return func() tea.Msg {
		return reloadedMsg{err: cache.Reload(ctx, listID)}
	}
}

func (m galleryModel) countdown() tea.Cmd {
	seq := m.countdownSeq
	return tea.Tick(countdownInterval, func(time.Time) tea.Msg { return countdownTickMsg{seq: seq} })
}

func (m galleryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.high = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case toastMsg:
		var cmds []tea.Cmd
		if msg.dismiss != "" {
			m.dropToast(msg.dismiss)
		} else {
			t := msg.toast
			m.toasts = append(m.toasts, t)
			if _, ok := t.Action("Undo"); ok {
				m.countdownSeq++
				cmds = append(cmds, m.countdown())
			}
			if t.Duration > 0 {
				id := t.ID
				cmds = append(cmds, tea.Tick(t.Duration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }))
			}
		}
		cmds = append(cmds, waitToast(m.toaster.ch))
		return m, tea.Batch(cmds...)

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case countdownTickMsg:
		if msg.seq != m.countdownSeq || !m.ctrl.UndoWindow().Armed() {
			return m, nil
		}
		return m, m.countdown()

	case announceMsg:
		m.status = msg.Message
		return m, waitAnnouncement(m.announcements)

	case cacheChangedMsg:
		if msg.listID == m.listID {
			if items, ok := m.cache.Get(m.listID); ok && m.ctrl.Reset(items) {
				m.clampCursor()
			}
		}
		return m, waitCacheChange(m.cacheChanges)

	case externalChangeMsg:
		return m, tea.Batch(m.reload(), waitExternalChange(m.changes))

	case reloadedMsg:
		if msg.err != nil {
			m.status = "Reload failed: " + msg.err.Error()
		}
		return m, nil

	case flightDoneMsg:
		if msg.err != nil {
			m.log.Debug("order write finished with error", zap.String("kind", string(msg.kind)), zap.Error(msg.err))
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m galleryModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	itemID, over, dragging := m.ctrl.Dragging()
	items := m.ctrl.Items()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if dragging {
			if over > 0 {
				m.ctrl.DragOver(over - 1)
				m.cursor = over - 1
			}
			return m, nil
		}
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if dragging {
			if over < len(items)-1 {
				m.ctrl.DragOver(over + 1)
				m.cursor = over + 1
			}
			return m, nil
		}
		if m.cursor < len(items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Pick):
		if dragging {
			target := over
			f, err := m.ctrl.Drop(m.ctx, &target)
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.lastFlight = f
			return m, waitFlight(f)
		}
		if m.cursor < 0 || m.cursor >= len(items) {
			return m, nil
		}
		if err := m.ctrl.BeginDrag(items[m.cursor].ID); err != nil {
			m.status = pickErrorMessage(err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if dragging {
			m.ctrl.Cancel()
			if idx := indexOfID(items, itemID); idx >= 0 {
				m.cursor = idx
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		if !m.ctrl.UndoWindow().Armed() {
			return m, nil
		}
		f, err := m.ctrl.Undo(m.ctx)
		if err != nil {
			return m, nil
		}
		m.lastFlight = f
		return m, waitFlight(f)

	case key.Matches(msg, m.keys.Retry):
		// The controller keeps the latest Retry, so it works even if its toast was dropped.
		if !m.ctrl.CanRetry() {
			return m, nil
		}
		f, err := m.ctrl.Retry(m.ctx)
		if err != nil {
			m.status = "Nothing to retry right now."
			return m, nil
		}
		m.dropToastWithAction("Retry")
		m.lastFlight = f
		return m, waitFlight(f)

	case key.Matches(msg, m.keys.Reload):
		if dragging {
			return m, nil
		}
		m.status = "Reloading…"
		return m, m.reload()
	}
	return m, nil
}

func pickErrorMessage(err error) string {
	if errors.Is(err, reorder.ErrTooFewItems) {
		return "Add another item to reorder this list."
	}
	return err.Error()
}

func (m *galleryModel) dropToast(id string) {
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m *galleryModel) dropToastWithAction(label string) {
	for i := len(m.toasts) - 1; i >= 0; i-- {
		if _, ok := m.toasts[i].Action(label); ok {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m *galleryModel) clampCursor() {
	n := len(m.ctrl.Items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m galleryModel) close() {
	m.ctrl.Close()
	for _, cancel := range m.unsubscribe {
		cancel()
	}
}

func indexOfID(items []model.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (m galleryModel) View() string {
	if m.quitting {
		return ""
	}
	items := m.ctrl.Items()
	itemID, over, dragging := m.ctrl.Dragging()

	// While dragging, show where the item would land without touching the real ordering.
	shown := items
	if dragging {
		if src := indexOfID(items, itemID); src >= 0 {
			if preview, ok := reorder.Move(items, src, &over); ok {
				shown = preview
			}
		}
	}

	var b strings.Builder
	b.WriteString(m.st.header.Render(fitWidth(m.title, m.width)))
	b.WriteString("\n")
	b.WriteString(m.st.muted.Render(fmt.Sprintf("%d items · %s", len(items), m.ctrl.State())))
	b.WriteString("\n\n")

	if len(shown) == 0 {
		b.WriteString(m.st.muted.Render("No items yet."))
		b.WriteString("\n")
	}
	for i, it := range shown {
		style, marker := m.st.row, " "
		switch {
		case dragging && it.ID == itemID:
			style, marker = m.st.dragging, "≡"
		case !dragging && i == m.cursor:
			style, marker = m.st.selected, "›"
		}
		b.WriteString(renderRow(it, i, m.width, style, marker))
		b.WriteString("\n")
	}

	if detail := m.detail(shown); detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.st.status.Render(fitWidth(m.status, m.width)))
		b.WriteString("\n")
	}
	for _, t := range m.toasts {
		b.WriteString(m.renderToast(t))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m galleryModel) detail(shown []model.Item) string {
	if _, _, dragging := m.ctrl.Dragging(); dragging || m.cursor < 0 || m.cursor >= len(shown) {
		return ""
	}
	it := shown[m.cursor]
	var parts []string
	if it.URL != "" {
		parts = append(parts, m.st.muted.Render(fitWidth(it.URL, m.width)))
	}
	if notes := renderNotes(it.Notes, m.width-2); notes != "" {
		parts = append(parts, notes)
	}
	return strings.Join(parts, "\n")
}

func (m galleryModel) renderToast(t reorder.Toast) string {
	style := m.st.toastOK
	if t.Kind == reorder.ToastError {
		style = m.st.toastErr
	}
	var actions []string
	for _, a := range t.Actions {
		if a.Label == "Undo" {
			rem := m.ctrl.UndoWindow().Remaining()
			if rem <= 0 {
				continue
			}
			actions = append(actions, fmt.Sprintf("%s %s (%ds)", m.st.toastKey.Render(a.Key), a.Label, int((rem+time.Second-1)/time.Second)))
			continue
		}
		actions = append(actions, m.st.toastKey.Render(a.Key)+" "+a.Label)
	}
	line := t.Message
	if len(actions) > 0 {
		line += "  " + strings.Join(actions, "  ")
	}
	return style.Render(line)
}

var _ tea.Model = galleryModel{}
