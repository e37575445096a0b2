package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/vk/catalogplan/internal/app"
	"github.com/vk/catalogplan/internal/hcl_adapter"
)

func newPlanCommand(g *globals, outW, errW io.Writer) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "plan [flags] MANIFEST...",
		Short: "Plan catalog changes and spool the action buffers",
		Long: `Plan reads every .hcl manifest found under the given files or
directories, verifies the declared resources against the catalog and
writes one batch per phase into the spool directory.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError("at least one manifest path is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ManifestPaths = args
			cfg.LogFormat = g.logFormat
			cfg.LogLevel = g.logLevel

			appConfig, err := app.NewConfig(cfg)
			if err != nil {
				return usageError("%v", err)
			}
			a, err := app.NewApp(errW, appConfig, hcl_adapter.NewLoader(), app.WithInput(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			report, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}
			app.RenderReport(outW, report)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.SpoolDir, "spool", "o", "catalogplan-spool", "Directory the batches are spooled to.")
	f.BoolVar(&cfg.ReplaceSpool, "replace", false, "Replace a spool directory that still holds a plan.")
	f.StringVar(&cfg.SettingsPath, "settings", "", "Path to a YAML settings file merged over the defaults.")
	f.StringVar(&cfg.CatalogPath, "catalog", "", "Directory of the persistent catalog store. Empty uses an in-memory catalog.")
	f.StringVar(&cfg.CatalogSeed, "catalog-seed", "", "YAML file seeding the in-memory catalog.")
	f.StringVarP(&cfg.Direction, "direction", "d", app.DirectionBoth, "Passes to plan. Options: 'install', 'uninstall', 'both'.")
	f.StringVar(&cfg.Architecture, "arch", "", "Target architecture, overriding the settings file.")
	f.BoolVarP(&cfg.Interactive, "interactive", "i", false, "Ask how to resolve each conflict instead of applying the policy.")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this file.")
	f.StringVar(&cfg.TraceFile, "trace-file", "", "Write OpenTelemetry spans of the run to this file.")
	return cmd
}
