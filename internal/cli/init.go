package cli

import (
	"errors"
	"io/fs"
	"os"

	"wishlist-cli/internal/config"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var ownerName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the workspace database and a default config",
		Long: `init is safe to re-run: the database is only created when missing and an
existing config file is never replaced. --name also creates the first identity
when the workspace has none.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			data := map[string]any{"dir": app.Dir, "sqlitePath": s.DBPath()}
			if ownerName != "" && len(db.Actors) == 0 {
				a, err := newActor(db, s, ownerName, "human", "")
				if err != nil {
					return writeErr(cmd, err)
				}
				db.Actors = append(db.Actors, a)
				db.CurrentActorID = a.ID
				if err := commit(s, db, a.ID, "identity.create", a.ID, map[string]any{"name": a.Name, "kind": a.Kind, "via": "init"}); err != nil {
					return writeErr(cmd, err)
				}
				data["actor"] = a
			} else if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}

			cfgPath := app.configPath()
			data["configPath"] = cfgPath
			wrote, err := writeConfigIfMissing(cfgPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			data["wroteConfig"] = wrote
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	cmd.Flags().StringVar(&ownerName, "name", "", "Create a human identity with this name if none exists")
	return cmd
}

func writeConfigIfMissing(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	return true, config.DefaultConfig().Save(path)
}
