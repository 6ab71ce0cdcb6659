package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"wishlist-cli/internal/api"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve list orders over HTTP (with a websocket change stream)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			cfg := app.config()
			if strings.TrimSpace(addr) == "" {
				addr = cfg.Server.Addr
			}
			// Requests without an actor header act as the configured (or current) actor.
			actorID := strings.TrimSpace(cfg.Server.Actor)
			if actorID == "" {
				actorID, _ = currentActorID(app, db)
			}

			srv, err := api.NewServer(api.ServerConfig{Addr: addr, Dir: app.Dir, ActorID: actorID, Logger: app.logger()})
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx) })
			g.Go(func() error { return srv.WatchStore(gctx) })
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	return cmd
}
