package cli

import (
	"fmt"
	"strings"

	"wishlist-cli/internal/docs"
	"wishlist-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "docs [topic]",
		Short:     "Print a help page (" + strings.Join(docs.Names(), ", ") + ")",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docs.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": docs.All()})
			}
			topic, ok := docs.Lookup(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("no help page %q (try: %s)", args[0], strings.Join(docs.Names(), ", ")))
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), topic.Body)
			return err
		},
	}
}

func newListsPublishCmd(app *App) *cobra.Command {
	var to string
	var notes bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish [list-id]",
		Short: "Write a list as markdown to <to>/lists/<list-id>.md",
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
			res, err := publish.WriteList(db, listID, to, publish.WriteOptions{IncludeNotes: notes, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&notes, "notes", false, "Include item notes")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
