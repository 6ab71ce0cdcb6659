package cli

import (
	"wishlist-cli/internal/model"
	"wishlist-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage wishlists",
	}

	cmd.AddCommand(newListsCreateCmd(app))
	cmd.AddCommand(newListsListCmd(app))
	cmd.AddCommand(newListsShowCmd(app))
	cmd.AddCommand(newListsUseCmd(app))
	cmd.AddCommand(newListsPublishCmd(app))

	return cmd
}

func newListsCreateCmd(app *App) *cobra.Command {
	var name string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentActorID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.CreateList(db, s, actorID, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				db.CurrentListID = res.List.ID
			}
			if err := commit(s, db, actorID, "list.create", res.List.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res.List})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "List name")
	cmd.Flags().BoolVar(&use, "use", false, "Set as current list")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newListsListCmd(app *App) *cobra.Command {
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wishlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]model.List, 0, len(db.Lists))
			for _, l := range db.Lists {
				if l.Archived && !includeArchived {
					continue
				}
				out = append(out, l)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&includeArchived, "archived", false, "Include archived lists")
	return cmd
}

func newListsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [list-id]",
		Short: "Show a wishlist with its items in order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}
			listID, err := currentListID(db, explicit)
			if err != nil {
				return writeErr(cmd, err)
			}
			l, ok := db.FindList(listID)
			if !ok {
				return writeErr(cmd, errNotFound("list", listID))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"list":  l,
					"items": db.ListItems(listID),
				},
			})
		},
	}
}

func newListsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <list-id>",
		Short: "Set the current list for this workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if _, ok := db.FindList(id); !ok {
				return writeErr(cmd, errNotFound("list", id))
			}
			db.CurrentListID = id
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentListId": id}})
		},
	}
}
