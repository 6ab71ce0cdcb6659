package cli

import (
	"strings"

	"wishlist-cli/internal/model"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var (
		limit    int
		entityID string
		prefix   string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the change log, oldest first",
		Example: `  wishlist events --entity item-k3d9x2
  wishlist events --type item. --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var evs []model.Event
			if entityID != "" {
				evs, err = s.ReadEventsForEntity(cmd.Context(), entityID, limit)
			} else {
				evs, err = s.ReadEvents(cmd.Context(), limit)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if prefix != "" {
				kept := evs[:0]
				for _, ev := range evs {
					if strings.HasPrefix(ev.Type, prefix) {
						kept = append(kept, ev)
					}
				}
				evs = kept
			}
			return writeOut(cmd, app, map[string]any{"data": evs, "meta": map[string]any{"count": len(evs)}})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Most recent events to read (0 for all)")
	cmd.Flags().StringVar(&entityID, "entity", "", "Only events about this actor, list or item id")
	cmd.Flags().StringVar(&prefix, "type", "", "Only event types starting with this prefix (e.g. item.)")
	return cmd
}
