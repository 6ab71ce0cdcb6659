package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"wishlist-cli/internal/config"
	"wishlist-cli/internal/format"
	"wishlist-cli/internal/logging"
	"wishlist-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir        string
	ActorID    string
	PrettyJSON bool
	Format     string
	ConfigPath string
	Verbose    bool

	cfg *config.Config
	log *zap.Logger

	appendCountStart uint64
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "wishlist",
		Short:        "Wishlist (local-first) CLI + gallery",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the gallery for the current list
  wishlist

  # Scriptable commands
  wishlist items list

  # Move an item to the top of its list
  wishlist items move item-k3d9x2 --to 1

  # Direct item lookup (shortcut for: wishlist items show <item-id>)
  wishlist item-k3d9x2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand opens the gallery.
			if len(args) == 0 {
				return runGallery(cmd, app, "", "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.appendCountStart = store.AppendEventCount()
		if err := app.resolveDir(); err != nil {
			return writeErr(cmd, err)
		}
		if err := app.loadConfig(); err != nil {
			return writeErr(cmd, err)
		}
		opts := logging.FromConfig(app.cfg.Logging, app.Verbose)
		// The gallery owns the terminal: log to the configured file or not at all.
		opts.Quiet = isGalleryCmd(cmd)
		log, err := logging.New(opts)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = log.With(zap.String("cmd", cmd.CommandPath()))
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if n := store.AppendEventCount() - app.appendCountStart; n > 0 {
			app.logger().Debug("events appended", zap.Uint64("count", n))
		}
		_ = app.logger().Sync()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("WISHLIST_DIR", ""), "Path to the store dir (default: nearest .wishlist, else ./.wishlist)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("WISHLIST_ACTOR", ""), "Actor id (overrides the current actor)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("WISHLIST_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: <dir>/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newIdentityCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newGalleryCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func isGalleryCmd(cmd *cobra.Command) bool {
	return cmd.Name() == "gallery" || !cmd.HasParent()
}

func (app *App) resolveDir() error {
	if strings.TrimSpace(app.Dir) != "" {
		return nil
	}
	dir, err := store.DefaultDir()
	if err != nil {
		return err
	}
	app.Dir = dir
	return nil
}

func (app *App) configPath() string {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p
	}
	return config.Path(app.Dir)
}

func (app *App) loadConfig() error {
	cfg, err := config.Load(app.configPath())
	if err != nil {
		return fmt.Errorf("%s: %w", app.configPath(), err)
	}
	app.cfg = cfg
	return nil
}

func (app *App) config() *config.Config {
	if app.cfg == nil {
		return config.DefaultConfig()
	}
	return app.cfg
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	if err := app.resolveDir(); err != nil {
		return nil, store.Store{}, err
	}
	s := store.Store{Dir: app.Dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

// commit saves db, then records one event describing the change.
func commit(s store.Store, db *store.DB, actorID, eventType, entityID string, payload any) error {
	if err := s.Save(db); err != nil {
		return err
	}
	return s.AppendEvent(actorID, eventType, entityID, payload)
}

func currentActorID(app *App, db *store.DB) (string, error) {
	if app.ActorID != "" {
		return app.ActorID, nil
	}
	if db.CurrentActorID != "" {
		return db.CurrentActorID, nil
	}
	return "", errors.New("no current actor; run `wishlist identity create --name ... --use` or `wishlist identity use <actor-id>` (or pass --actor)")
}

// currentListID resolves an explicit list id, then the workspace's current list, then the
// only live list when there is exactly one.
func currentListID(db *store.DB, explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	if db.CurrentListID != "" {
		return db.CurrentListID, nil
	}
	var live []string
	for _, l := range db.Lists {
		if !l.Archived {
			live = append(live, l.ID)
		}
	}
	if len(live) == 1 {
		return live[0], nil
	}
	return "", errors.New("no current list; pass --list or run `wishlist lists use <list-id>`")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
