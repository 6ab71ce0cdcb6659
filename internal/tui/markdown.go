package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdMu sync.Mutex
	// Renderers are cached per style and width. Building one with WithAutoStyle queries the
	// terminal and can block, so styles are always explicit.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderNotes renders item notes as compact markdown wrapped to width. Rendering errors
// fall back to the raw text.
func renderNotes(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	r, err := notesRenderer(notesStyle(), width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func notesRenderer(style string, width int) (*glamour.TermRenderer, error) {
	key := style + ":" + strconv.Itoa(width)
	mdMu.Lock()
	defer mdMu.Unlock()
	if r := mdRenderers[key]; r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(notesStyleConfig(style)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	mdRenderers[key] = r
	return r, nil
}

func notesStyle() string {
	if dark, ok := darkBackground(); ok {
		if dark {
			return "dark"
		}
		return "light"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// notesStyleConfig starts from glamour's palette, drops block margins so notes sit flush in
// the detail pane, and aligns text and link colors with the gallery theme.
func notesStyleConfig(style string) ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	pick := func(c lipgloss.AdaptiveColor) *string { s := c.Dark; return &s }
	if style == "light" {
		cfg = glamourstyles.LightStyleConfig
		pick = func(c lipgloss.AdaptiveColor) *string { s := c.Light; return &s }
	}

	zero := uint(0)
	cfg.Document.Margin = &zero
	cfg.Paragraph.Margin = &zero
	cfg.List.Margin = &zero
	cfg.Heading.Margin = &zero
	cfg.CodeBlock.Margin = &zero

	cfg.Text.Color = pick(colorSurfaceFg)
	cfg.Heading.Color = pick(colorSurfaceFg)
	cfg.Link.Color = pick(colorAccent)
	cfg.LinkText.Color = pick(colorAccent)
	underline := true
	cfg.Link.Underline = &underline
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	return cfg
}
