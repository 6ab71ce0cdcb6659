package tui

import (
	"fmt"
	"strings"

	"wishlist-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// fitWidth pads or cuts s to exactly w terminal cells.
func fitWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := xansi.StringWidth(s)
	switch {
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	case sw > w:
		if w == 1 {
			return xansi.Truncate(s, w, "")
		}
		return xansi.Truncate(s, w, "…")
	}
	return s
}

func formatPrice(cents int64) string {
	if cents <= 0 {
		return ""
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// renderRow draws one gallery row: marker, position, title, and a right-aligned price.
func renderRow(it model.Item, pos int, width int, style lipgloss.Style, marker string) string {
	if width < 4 {
		return ""
	}
	price := formatPrice(it.PriceCents)
	left := fmt.Sprintf("%s %2d. %s", marker, pos+1, it.Title)
	room := width
	if price != "" {
		room = width - xansi.StringWidth(price) - 1
	}
	line := fitWidth(left, width)
	if room >= 8 {
		line = fitWidth(left, room)
		if price != "" {
			line += " " + price
		}
	}
	return style.Render(line)
}
