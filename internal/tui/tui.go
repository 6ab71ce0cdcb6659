// Package tui is the interactive wishlist gallery: keyboard drag and drop over one list,
// with toasts for undo and retry.
package tui

import (
	"context"
	"errors"
	"time"

	"wishlist-cli/internal/announce"
	"wishlist-cli/internal/model"
	"wishlist-cli/internal/reorder"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	ListID string
	Title  string
	Items  []model.Item

	Persister reorder.Persister
	// Loader refetches the authoritative ordering on reload and forced refresh.
	Loader reorder.Loader
	// Changes signals that the authoritative source changed elsewhere.
	Changes <-chan struct{}

	Bus    *announce.Bus
	Clock  reorder.Clock
	Logger *zap.Logger

	UndoWindow     time.Duration
	PersistTimeout time.Duration
}

// Run shows the gallery until the user quits or ctx is cancelled.
func Run(ctx context.Context, o Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newGalleryModel(ctx, o)
	defer m.close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
