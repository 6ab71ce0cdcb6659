// Package docs holds the long-form help pages printed by `wishlist docs`.
package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var pages embed.FS

// Topic is one embedded help page. Title is the page's first "# " heading.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Body  string `json:"-"`
}

// All returns every topic sorted by name.
func All() []Topic {
	names, _ := fs.Glob(pages, "content/*.md")
	out := make([]Topic, 0, len(names))
	for _, p := range names {
		if t, ok := Lookup(strings.TrimSuffix(path.Base(p), ".md")); ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists topic names for help text.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a topic case-insensitively. Names containing path separators never match.
func Lookup(name string) (Topic, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return Topic{}, false
	}
	b, err := pages.ReadFile("content/" + name + ".md")
	if err != nil {
		return Topic{}, false
	}
	body := string(b)
	return Topic{Name: name, Title: firstHeading(body, name), Body: body}, true
}

func firstHeading(md, fallback string) string {
	sc := bufio.NewScanner(strings.NewReader(md))
	for sc.Scan() {
		if h, ok := strings.CutPrefix(sc.Text(), "# "); ok {
			return strings.TrimSpace(h)
		}
	}
	return fallback
}
