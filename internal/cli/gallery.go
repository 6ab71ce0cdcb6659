package cli

import (
	"wishlist-cli/internal/announce"
	"wishlist-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGalleryCmd(app *App) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "gallery [list-id]",
		Short: "Open the interactive gallery (default with no subcommand)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID := ""
			if len(args) == 1 {
				listID = args[0]
			}
			return runGallery(cmd, app, listID, serverURL)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "Edit the list through a `wishlist serve` URL")
	return cmd
}

func runGallery(cmd *cobra.Command, app *App, explicitList, serverURL string) error {
	db, s, err := loadDB(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	actorID, err := currentActorID(app, db)
	if err != nil {
		return writeErr(cmd, err)
	}
	listID, err := currentListID(db, explicitList)
	if err != nil {
		return writeErr(cmd, err)
	}
	title := listID
	if l, ok := db.FindList(listID); ok {
		title = l.Name
	}

	ctx := cmd.Context()
	b := newOrderBackend(app, s, actorID, serverURL)
	items, err := b.loader(ctx, listID)
	if err != nil {
		return writeErr(cmd, err)
	}

	changes, err := b.changes(ctx, listID)
	if err != nil {
		// The gallery still works without live reload; r reloads by hand.
		app.logger().Warn("change stream unavailable", zap.Error(err))
		changes = nil
	}

	bus := announce.NewBus(64)
	defer bus.Close()

	cfg := app.config()
	return tui.Run(ctx, tui.Options{
		ListID:         listID,
		Title:          title,
		Items:          items,
		Persister:      b.persister,
		Loader:         b.loader,
		Changes:        changes,
		Bus:            bus,
		Logger:         app.logger(),
		UndoWindow:     cfg.GetUndoWindow(),
		PersistTimeout: cfg.GetPersistTimeout(),
	})
}
