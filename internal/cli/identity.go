package cli

import (
	"errors"
	"fmt"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/store"

	"github.com/spf13/cobra"
)

func newIdentityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "identity",
		Aliases: []string{"id"},
		Short:   "Manage who edits this workspace",
		Long: `Every change is attributed to an identity. Humans own lists; agents act on
behalf of a human and inherit that human's permissions.`,
	}
	cmd.AddCommand(
		newIdentityCreateCmd(app),
		newIdentityUseCmd(app),
		newIdentityListCmd(app),
		newIdentityWhoamiCmd(app),
	)
	return cmd
}

// newActor validates kind and the parent user, then returns an unsaved actor.
func newActor(db *store.DB, s store.Store, name, kind, userID string) (model.Actor, error) {
	k, err := store.NormalizeActorKind(kind)
	if err != nil {
		return model.Actor{}, err
	}
	a := model.Actor{ID: s.NextID(db, "act"), Kind: k, Name: name}
	switch {
	case k == model.ActorKindHuman && userID != "":
		return model.Actor{}, errors.New("--user only applies to agent identities")
	case k == model.ActorKindAgent && userID == "":
		return model.Actor{}, errors.New("agent identities need --user <human-actor-id>")
	case k == model.ActorKindAgent:
		owner, ok := db.FindActor(userID)
		if !ok {
			return model.Actor{}, errNotFound("actor", userID)
		}
		if owner.Kind != model.ActorKindHuman {
			return model.Actor{}, fmt.Errorf("%s is an agent; --user must be a human", userID)
		}
		a.UserID = &owner.ID
	}
	return a, nil
}

func newIdentityCreateCmd(app *App) *cobra.Command {
	var (
		name, kind, userID string
		use                bool
	)
	cmd := &cobra.Command{
		Use:   "create --name <name>",
		Short: "Create an identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := newActor(db, s, name, kind, userID)
			if err != nil {
				return writeErr(cmd, err)
			}
			db.Actors = append(db.Actors, a)
			// The first identity in a workspace becomes current without asking.
			if use || db.CurrentActorID == "" {
				db.CurrentActorID = a.ID
				app.ActorID = a.ID
			}
			if err := commit(s, db, a.ID, "identity.create", a.ID, map[string]any{"name": a.Name, "kind": a.Kind, "userId": a.UserID}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": a,
				"meta": map[string]any{"current": db.CurrentActorID == a.ID},
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&kind, "kind", string(model.ActorKindHuman), "human|agent")
	cmd.Flags().StringVar(&userID, "user", "", "Owning human actor id (agents only)")
	cmd.Flags().BoolVar(&use, "use", false, "Make this the current identity")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newIdentityUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <actor-id>",
		Short: "Switch the current identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, ok := db.FindActor(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("actor", args[0]))
			}
			db.CurrentActorID = a.ID
			app.ActorID = a.ID
			if err := commit(s, db, a.ID, "identity.use", a.ID, map[string]any{"actorId": a.ID}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}
}

func newIdentityListCmd(app *App) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]model.Actor, 0, len(db.Actors))
			if kind == "" {
				out = append(out, db.Actors...)
			} else {
				k, err := store.NormalizeActorKind(kind)
				if err != nil {
					return writeErr(cmd, err)
				}
				for _, a := range db.Actors {
					if a.Kind == k {
						out = append(out, a)
					}
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"currentActorId": db.CurrentActorID},
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only human or agent identities")
	return cmd
}

func newIdentityWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity changes are attributed to",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := currentActorID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, ok := db.FindActor(id)
			if !ok {
				return writeErr(cmd, errNotFound("actor", id))
			}
			meta := map[string]any{}
			if a.UserID != nil {
				meta["actsFor"] = *a.UserID
			}
			return writeOut(cmd, app, map[string]any{"data": a, "meta": meta})
		},
	}
}
