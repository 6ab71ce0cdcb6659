package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wishlist-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage wishlist items",
	}

	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))
	cmd.AddCommand(newItemsEditCmd(app))
	cmd.AddCommand(newItemsArchiveCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))

	return cmd
}

// parsePrice accepts "12", "12.5", "12.50" and "$12.50" and returns cents.
func parsePrice(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, nil
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
	}
	return dollars*100 + cents, nil
}

func newItemsAddCmd(app *App) *cobra.Command {
	var listID, title, notes, url, price string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the end of a list",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentActorID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			lid, err := currentListID(db, listID)
			if err != nil {
				return writeErr(cmd, err)
			}
			cents, err := parsePrice(price)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.CreateItem(db, s, actorID, lid, mutate.ItemInput{Title: title, Notes: notes, URL: url, PriceCents: cents})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(s, db, actorID, "item.create", res.Item.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Item})
		},
	}

	cmd.Flags().StringVar(&listID, "list", "", "List id (default: current list)")
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes (markdown)")
	cmd.Flags().StringVar(&url, "url", "", "Link")
	cmd.Flags().StringVar(&price, "price", "", "Price, e.g. 24.99")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var listID string
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the items of a list in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			lid, err := currentListID(db, listID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := db.FindList(lid); !ok {
				return writeErr(cmd, errNotFound("list", lid))
			}
			out := db.ListItems(lid)
			if includeArchived {
				for _, it := range db.Items {
					if it.ListID == lid && it.Archived {
						out = append(out, it)
					}
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&listID, "list", "", "List id (default: current list)")
	cmd.Flags().BoolVar(&includeArchived, "archived", false, "Append archived items")
	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			it, ok := db.FindItem(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("item", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
}

func newItemsEditCmd(app *App) *cobra.Command {
	var title, notes, url, price string

	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Edit an item's title, notes, link or price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentActorID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			var patch mutate.ItemPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("notes") {
				patch.Notes = &notes
			}
			if cmd.Flags().Changed("url") {
				patch.URL = &url
			}
			if cmd.Flags().Changed("price") {
				cents, err := parsePrice(price)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.PriceCents = &cents
			}
			if patch == (mutate.ItemPatch{}) {
				return writeErr(cmd, errors.New("nothing to edit; pass --title, --notes, --url or --price"))
			}

			res, err := mutate.EditItem(db, actorID, args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := commit(s, db, actorID, "item.edit", res.Item.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Item})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes (markdown)")
	cmd.Flags().StringVar(&url, "url", "", "Link")
	cmd.Flags().StringVar(&price, "price", "", "Price, e.g. 24.99")
	return cmd
}

func newItemsArchiveCmd(app *App) *cobra.Command {
	var unarchive bool

	cmd := &cobra.Command{
		Use:   "archive <item-id>",
		Short: "Archive an item (the rest of the list closes the gap)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentActorID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.SetItemArchived(db, actorID, args[0], !unarchive)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Item == nil {
				return writeErr(cmd, errNotFound("item", args[0]))
			}
			if res.Changed {
				if err := commit(s, db, actorID, "item.archive", res.Item.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Item, "meta": map[string]any{"changed": res.Changed}})
		},
	}
	cmd.Flags().BoolVar(&unarchive, "unarchive", false, "Restore the item to the end of its list")
	return cmd
}
