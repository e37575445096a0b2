package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vk/catalogplan/internal/actions"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/executor"
	"github.com/vk/catalogplan/internal/metrics"
	"github.com/vk/catalogplan/internal/settings"
)

var tracer = otel.Tracer("catalogplan/scheduler")

// DefaultScheduler is the reference implementation of the Scheduler
// interface.
type DefaultScheduler struct {
	settings *settings.Settings
	exec     executor.Executor
	metrics  *metrics.Metrics
	busy     atomic.Bool
}

var _ Scheduler = (*DefaultScheduler)(nil)

// New creates a scheduler that hands its batches to exec. m may be nil.
func New(s *settings.Settings, exec executor.Executor, m *metrics.Metrics) *DefaultScheduler {
	return &DefaultScheduler{settings: s, exec: exec, metrics: m}
}

// Schedule implements the Scheduler interface.
func (s *DefaultScheduler) Schedule(ctx context.Context, d entity.Direction, set *entity.Set) (*Plan, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrant
	}
	defer s.busy.Store(false)

	ctx, span := tracer.Start(ctx, "scheduler.Schedule", trace.WithAttributes(attribute.String("direction", d.String())))
	defer span.End()

	ctx, logger := ctxlog.With(ctx, "direction", d.String())
	plan := &Plan{Direction: d}

	all, commit := set.Totals(d)
	if all == 0 {
		logger.Info("Nothing to do")
		return plan, nil
	}

	plan.RollbackFile = s.rollbackFile()
	var built, executed []*actions.Result
	for _, phase := range actions.Phases {
		switch {
		case phase == actions.DeferredExecute && all-commit <= 0:
			logger.Debug("Phase skipped", "phase", phase.String())
			continue
		case phase == actions.CommitExecute && commit <= 0:
			logger.Debug("Phase skipped", "phase", phase.String())
			continue
		}

		b, res, err := s.batch(ctx, d, phase, set, plan.RollbackFile)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("building %s %s batch: %w", d, phase, err)
		}
		if res != nil {
			built = append(built, res)
		}
		if phase == actions.DeferredExecute || phase == actions.CommitExecute {
			executed = append(executed, res)
		}
		plan.Batches = append(plan.Batches, b)
	}
	plan.Progress = Progress(s.settings, executed...)

	if err := s.exec.Enqueue(ctx, plan.Batches); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("enqueueing %s batches: %w", d, err)
	}

	for _, b := range plan.Batches {
		s.metrics.RecordBatch(b.Phase.String())
	}
	for _, r := range built {
		recordActions(s.metrics, r)
	}
	s.metrics.SetProgress(d.String(), plan.Progress)
	span.SetAttributes(attribute.Int("batches", len(plan.Batches)), attribute.Int("progress", plan.Progress))

	logger.Info("Pass scheduled",
		"batches", len(plan.Batches),
		"transitions", all,
		"commit", commit,
		"progress", plan.Progress,
		"rollback_file", plan.RollbackFile,
	)
	return plan, nil
}

func (s *DefaultScheduler) rollbackFile() string {
	name := "catalog-" + uuid.NewString() + ".rbk"
	if s.settings.RollbackDir == "" {
		return name
	}
	return filepath.Join(s.settings.RollbackDir, name)
}

func (s *DefaultScheduler) batch(ctx context.Context, d entity.Direction, phase actions.Phase, set *entity.Set, rollbackFile string) (executor.Batch, *actions.Result, error) {
	ctx, span := tracer.Start(ctx, "phase "+phase.String())
	defer span.End()

	b := executor.Batch{
		Phase:        phase,
		ActionName:   s.settings.ActionName(d.String(), phase.String()),
		Direction:    d,
		RollbackFile: rollbackFile,
	}
	if !phase.Buffered() {
		return b, nil, nil
	}

	res, err := actions.Build(ctx, actions.Request{Direction: d, Phase: phase, Set: set, Settings: s.settings})
	if err != nil {
		span.RecordError(err)
		return b, nil, err
	}
	b.Buffer = res.Buffer
	b.Progress = res.Progress
	span.SetAttributes(attribute.Int("bytes", len(res.Buffer)), attribute.Int("items", res.Items()))
	return b, res, nil
}

func recordActions(m *metrics.Metrics, r *actions.Result) {
	for kind, byAction := range r.Emitted {
		for a, n := range byAction {
			m.RecordActions(r.Phase.String(), kind.String(), a.String(), n)
		}
	}
}
