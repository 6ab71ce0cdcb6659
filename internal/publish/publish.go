// Package publish exports wishlists as markdown files for sharing.
package publish

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"wishlist-cli/internal/store"
)

type WriteOptions struct {
	IncludeNotes bool
	// Overwrite replaces an existing export; otherwise WriteList fails with ErrExists.
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
	Bytes   int      `json:"bytes"`
}

var ErrExists = errors.New("export already exists (use --overwrite)")

// ExportPath is where WriteList puts a list under root.
func ExportPath(root, listID string) string {
	return filepath.Join(filepath.Clean(root), "lists", listID+".md")
}

// WriteList renders listID and writes it to ExportPath(toDir, listID).
func WriteList(db *store.DB, listID, toDir string, opt WriteOptions) (WriteResult, error) {
	listID, toDir = strings.TrimSpace(listID), strings.TrimSpace(toDir)
	switch {
	case db == nil:
		return WriteResult{}, errors.New("publish: nil db")
	case listID == "":
		return WriteResult{}, errors.New("publish: missing list id")
	case toDir == "":
		return WriteResult{}, errors.New("publish: missing --to")
	}

	md, err := RenderListMarkdown(db, listID, RenderOptions{IncludeNotes: opt.IncludeNotes})
	if err != nil {
		return WriteResult{}, err
	}
	out := ExportPath(toDir, listID)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return WriteResult{}, err
	}
	if err := createFile(out, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{out}, Bytes: len(md)}, nil
}

// createFile uses O_EXCL unless overwriting, so two exports never race past an existence check.
func createFile(path string, b []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
