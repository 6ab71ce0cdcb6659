package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The gallery has to read on light and dark terminals alike, so colors are adaptive and
// faint styling is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorSurfaceFg  = ac("235", "252")
	colorControlBg  = ac("252", "235")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorAccent     = ac("27", "62")
	colorAccentFg   = ac("255", "235")
	colorError      = ac("160", "203")
	colorSuccess    = ac("28", "114")
)

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

type styles struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	row      lipgloss.Style
	selected lipgloss.Style
	dragging lipgloss.Style
	price    lipgloss.Style
	status   lipgloss.Style
	toastOK  lipgloss.Style
	toastErr lipgloss.Style
	toastKey lipgloss.Style
}

func newStyles() styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg),
		muted:    faintIfDark(lipgloss.NewStyle().Foreground(colorMuted)),
		row:      lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		dragging: lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Bold(true),
		price:    lipgloss.NewStyle().Foreground(colorMuted),
		status:   faintIfDark(lipgloss.NewStyle().Foreground(colorMuted)).Italic(true),
		toastOK:  lipgloss.NewStyle().Foreground(colorSuccess).Background(colorControlBg).Padding(0, 1),
		toastErr: lipgloss.NewStyle().Foreground(colorError).Background(colorControlBg).Padding(0, 1),
		toastKey: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	}
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts TERM/COLORTERM over the
// detector, which under-reports on some terminals. termenv.EnvColorProfile is not used
// because CLICOLOR settings meant for piped output would turn the TUI gray.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(upgradeProfile(termenv.ColorProfile(), os.Getenv("TERM"), os.Getenv("COLORTERM")))
}

func upgradeProfile(p termenv.Profile, term, colorterm string) termenv.Profile {
	if p == termenv.Ascii {
		return p
	}
	colorterm = strings.ToLower(colorterm)
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		return termenv.TrueColor
	}
	if p == termenv.ANSI && strings.Contains(strings.ToLower(term), "256color") {
		return termenv.ANSI256
	}
	return p
}

// darkBackground resolves the background preference:
// WISHLIST_TUI_THEME=light|dark, then the COLORFGBG "fg;bg" hint. ok is false when
// neither says anything.
func darkBackground() (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("WISHLIST_TUI_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}

func applyThemePreference() {
	if dark, ok := darkBackground(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}
