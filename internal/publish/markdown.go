package publish

import (
	"bytes"
	"fmt"
	"strings"

	"wishlist-cli/internal/store"
)

type RenderOptions struct {
	// IncludeNotes appends each item's notes under its entry.
	IncludeNotes bool
}

// RenderListMarkdown renders a list as a numbered markdown list in its stored order.
func RenderListMarkdown(db *store.DB, listID string, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	l, ok := db.FindList(strings.TrimSpace(listID))
	if !ok {
		return "", fmt.Errorf("list not found: %s", listID)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(l.Name))
	writeLn("")

	items := db.ListItems(l.ID)
	if len(items) == 0 {
		writeLn("_Nothing here yet._")
		return buf.String(), nil
	}

	var total int64
	for i, it := range items {
		title := escapeInline(strings.TrimSpace(it.Title))
		if u := strings.TrimSpace(it.URL); u != "" {
			title = "[" + title + "](" + u + ")"
		}
		line := fmt.Sprintf("%d. %s", i+1, title)
		if it.PriceCents > 0 {
			line += " · " + formatCents(it.PriceCents)
			total += it.PriceCents
		}
		writeLn(line)
		if opt.IncludeNotes {
			for _, nl := range strings.Split(strings.TrimSpace(it.Notes), "\n") {
				if strings.TrimSpace(nl) == "" {
					continue
				}
				writeLn("   " + nl)
			}
		}
	}
	if total > 0 {
		writeLn("")
		writeLn("Total: " + formatCents(total))
	}
	return buf.String(), nil
}

func formatCents(c int64) string {
	return fmt.Sprintf("$%d.%02d", c/100, c%100)
}

// escapeInline keeps titles from opening links or emphasis by accident.
func escapeInline(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`)
	return r.Replace(s)
}
