package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/executor"
	"github.com/vk/catalogplan/internal/graph"
	"github.com/vk/catalogplan/internal/localexecutor"
	"github.com/vk/catalogplan/internal/localsession"
	"github.com/vk/catalogplan/internal/propagate"
	"github.com/vk/catalogplan/internal/scheduler"
	"github.com/vk/catalogplan/internal/session"
	"github.com/vk/catalogplan/internal/verify"
)

// Report is the outcome of a planning run.
type Report struct {
	Set      *entity.Set
	Plans    []*scheduler.Plan
	SpoolDir string
}

// Run executes the planning pipeline: manifests are loaded, read into an
// entity set, propagated, ordered, verified against the catalog and
// scheduled one pass per configured direction. The spool is written once,
// after every pass succeeded.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.")

	shutdown, err := setupTracing(a.config.TraceFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			a.logger.Warn("Failed to flush traces.", "error", err)
		}
	}()

	ctx, span := tracer.Start(ctx, "plan", trace.WithAttributes(
		attribute.String("direction", a.config.Direction),
		attribute.StringSlice("manifests", a.config.ManifestPaths),
	))
	defer span.End()

	report, err := a.plan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("App.Run method finished.")
	return report, nil
}

func (a *App) plan(ctx context.Context) (*Report, error) {
	report := &Report{SpoolDir: a.config.SpoolDir}

	err := stage(ctx, "read", func(ctx context.Context) error {
		model, err := a.loader.Load(ctx, a.config.ManifestPaths...)
		if err != nil {
			return fmt.Errorf("failed to load manifests: %w", err)
		}
		a.logger.Debug("Manifests loaded and translated into unified model.")

		report.Set, err = entity.Read(ctx, entity.NewModelSource(model, a.settings.Architecture))
		return err
	})
	if err != nil {
		return nil, err
	}
	set := report.Set

	if err := stage(ctx, "propagate", func(ctx context.Context) error {
		propagate.Run(ctx, set)
		return nil
	}); err != nil {
		return nil, err
	}
	if err := stage(ctx, "order", func(ctx context.Context) error {
		return graph.Order(ctx, set)
	}); err != nil {
		return nil, err
	}

	store, closeStore, err := a.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			a.logger.Warn("Failed to close catalog.", "error", err)
		}
	}()

	factory := &localsession.Factory{Catalog: store, Metrics: a.metrics}
	// Passes hand their batches to the collector; the spool only sees them
	// once every pass was verified and scheduled.
	collected := &executor.Recorder{}
	sched := scheduler.New(a.settings, collected, a.metrics)

	for _, d := range a.config.Directions() {
		p, err := a.pass(ctx, d, set, factory, sched)
		if err != nil {
			return nil, err
		}
		report.Plans = append(report.Plans, p)
	}

	batches := collected.Batches()
	if len(batches) == 0 {
		a.logger.Info("Nothing to spool.")
		return report, nil
	}
	spool := &localexecutor.Spool{Dir: a.config.SpoolDir, Replace: a.config.ReplaceSpool}
	if err := stage(ctx, "spool", func(ctx context.Context) error {
		return spool.Enqueue(ctx, batches)
	}); err != nil {
		return nil, err
	}
	return report, nil
}

// pass verifies the set against the catalog in one session and schedules
// the direction's batches.
func (a *App) pass(ctx context.Context, d entity.Direction, set *entity.Set, f session.Factory, sched scheduler.Scheduler) (*scheduler.Plan, error) {
	ctx, logger := ctxlog.With(ctx, "direction", d.String())
	logger.Info("Planning pass started.")

	sess, err := f.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening catalog session: %w", err)
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			logger.Warn("Failed to close catalog session.", "error", err)
		}
	}()

	v := &verify.Verifier{
		Session:    sess,
		Decider:    a.decider,
		MaxRetries: a.settings.MaxRetries,
		Metrics:    a.metrics,
	}
	err = stage(ctx, "verify "+d.String(), func(ctx context.Context) error {
		if d == entity.DirectionUninstall {
			return v.Uninstall(ctx, set)
		}
		return v.Install(ctx, set)
	})
	if err != nil {
		return nil, err
	}

	var plan *scheduler.Plan
	err = stage(ctx, "schedule "+d.String(), func(ctx context.Context) error {
		var err error
		plan, err = sched.Schedule(ctx, d, set)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Planning pass finished.", "batches", len(plan.Batches), "progress", plan.Progress)
	return plan, nil
}
