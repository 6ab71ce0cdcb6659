package cli

import (
	"fmt"

	"wishlist-cli/internal/reorder"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newItemsMoveCmd(app *App) *cobra.Command {
	var to int
	var listID string
	var serverURL string

	cmd := &cobra.Command{
		Use:   "move <item-id>",
		Short: "Move an item to a 1-based position in its list",
		Long: "Move an item within its list. The new order is saved as a full rank assignment\n" +
			"(every item renumbered 0..N-1) through the same path the gallery uses, locally\n" +
			"or against --server. A failed save leaves the stored order untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := args[0]
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentActorID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			lid := listID
			if lid == "" {
				it, ok := db.FindItem(itemID)
				if !ok {
					return writeErr(cmd, fmt.Errorf("item %s is not in the local workspace; pass --list", itemID))
				}
				lid = it.ListID
			}

			ctx := cmd.Context()
			backend := newOrderBackend(app, s, actorID, serverURL)
			toasts := &reorder.Recorder{}
			ctrl, _, err := newListController(ctx, app, backend, lid, toasts)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ctrl.Close()

			items := ctrl.Items()
			from := positionOf(items, itemID)
			if from < 0 {
				return writeErr(cmd, errNotFound("item", itemID))
			}
			if to < 1 || to > len(items) {
				return writeErr(cmd, fmt.Errorf("--to must be between 1 and %d", len(items)))
			}

			if err := ctrl.BeginDrag(itemID); err != nil {
				return writeErr(cmd, err)
			}
			target := to - 1
			f, err := ctrl.Drop(ctx, &target)
			if err != nil {
				return writeErr(cmd, err)
			}
			if f == nil {
				return writeOut(cmd, app, map[string]any{"data": items, "meta": map[string]any{"moved": false}})
			}
			if err := f.Wait(); err != nil {
				app.logger().Info("move failed", zap.String("item", itemID), zap.Error(err))
				return writeErr(cmd, fmt.Errorf("%s %w", reorder.FailureMessage(err), err))
			}

			meta := map[string]any{"moved": true, "from": from + 1, "to": to}
			if backend.remote != "" {
				meta["server"] = backend.remote
			}
			return writeOut(cmd, app, map[string]any{"data": ctrl.Items(), "meta": meta})
		},
	}

	cmd.Flags().IntVar(&to, "to", 0, "Target position (1 = top)")
	cmd.Flags().StringVar(&listID, "list", "", "List id (default: the item's list in the local workspace)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Save through a `wishlist serve` URL instead of the local workspace")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
