package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vk/catalogplan/internal/app"
	"github.com/vk/catalogplan/internal/ctxlog"
)

func newCatalogCommand(g *globals, outW, errW io.Writer) *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the persistent catalog store",
	}
	cmd.PersistentFlags().StringVar(&store, "store", "catalogplan-catalog", "Directory of the persistent catalog store.")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import catalog objects from a YAML file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxlog.WithLogger(cmd.Context(), app.NewLogger(g.logLevel, g.logFormat, errW))
			n, err := app.ImportCatalog(ctx, store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(outW, "Imported %d objects into %s\n", n, store)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every object of the catalog store",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxlog.WithLogger(cmd.Context(), app.NewLogger(g.logLevel, g.logFormat, errW))
			entries, err := app.ListCatalog(ctx, store)
			if err != nil {
				return err
			}
			app.RenderEntries(outW, entries)
			return nil
		},
	}

	cmd.AddCommand(importCmd, listCmd)
	return cmd
}
