package cli

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vk/catalogplan/internal/app"
)

func newInspectCommand(outW io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect SPOOL_DIR",
		Short: "Decode and print the batches of a spool directory",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return usageError("invalid format: must be 'text' or 'yaml'")
			}
			batches, err := app.Inspect(args[0])
			if err != nil {
				return err
			}
			if format == "yaml" {
				enc := yaml.NewEncoder(outW)
				enc.SetIndent(2)
				if err := enc.Encode(batches); err != nil {
					return err
				}
				return enc.Close()
			}
			app.RenderInspection(outW, batches)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format. Options: 'text' or 'yaml'.")
	return cmd
}
