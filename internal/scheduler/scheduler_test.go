package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/actions"
	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/executor"
	"github.com/vk/catalogplan/internal/metrics"
	"github.com/vk/catalogplan/internal/propagate"
	"github.com/vk/catalogplan/internal/settings"
)

func model(request string, withCommit bool) *config.Model {
	m := &config.Model{
		Units:        []*config.InstallUnit{{Name: "core", Request: request}},
		Applications: []*config.Application{{Key: "app", Unit: "core", Name: "Calc"}},
		Assemblies: []*config.Assembly{
			{Key: "calc", Unit: "core", Application: "app", DllPath: "calc.dll"},
		},
	}
	if withCommit {
		m.Assemblies = append(m.Assemblies, &config.Assembly{
			Key: "late", Unit: "core", Application: "app", DllPath: "late.dll", RunInCommit: true,
		})
	}
	return m
}

func readSet(t *testing.T, m *config.Model) (context.Context, *entity.Set) {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	set, err := entity.Read(ctx, entity.NewModelSource(m, ""))
	require.NoError(t, err)
	propagate.Run(ctx, set)
	return ctx, set
}

func phases(batches []executor.Batch) []actions.Phase {
	var out []actions.Phase
	for _, b := range batches {
		out = append(out, b.Phase)
	}
	return out
}

func TestSchedule(t *testing.T) {
	tests := []struct {
		name     string
		model    *config.Model
		phases   []actions.Phase
		progress int
	}{
		{
			name:     "deferred and commit work",
			model:    model("install", true),
			phases:   actions.Phases,
			progress: 10000 + 50000 + 50000,
		},
		{
			name:  "no commit work",
			model: model("install", false),
			phases: []actions.Phase{
				actions.RollbackPrepare, actions.RollbackExecute, actions.DeferredExecute, actions.Commit,
			},
			progress: 10000 + 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, set := readSet(t, tt.model)
			rec := &executor.Recorder{}
			s := New(settings.Default(), rec, metrics.New())

			plan, err := s.Schedule(ctx, entity.DirectionInstall, set)
			require.NoError(t, err)

			assert.Equal(t, tt.phases, phases(plan.Batches))
			assert.Equal(t, plan.Batches, rec.Batches())
			assert.Equal(t, tt.progress, plan.Progress)
			assert.True(t, strings.HasPrefix(plan.RollbackFile, "catalog-"))

			for _, b := range plan.Batches {
				assert.Equal(t, plan.RollbackFile, b.RollbackFile, "one rollback file per pass")
				assert.Equal(t, entity.DirectionInstall, b.Direction)
				assert.Equal(t, b.Phase.Buffered(), len(b.Buffer) > 0)
			}
			assert.Equal(t, "CatalogRollbackPrepare", plan.Batches[0].ActionName)
			assert.Equal(t, "CatalogInstallRollback", plan.Batches[1].ActionName)
		})
	}
}

func TestSchedule_NothingToDo(t *testing.T) {
	ctx, set := readSet(t, model("", true))
	rec := &executor.Recorder{}

	plan, err := New(settings.Default(), rec, nil).Schedule(ctx, entity.DirectionInstall, set)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Empty(t, plan.RollbackFile)
	assert.Empty(t, rec.Batches())
}

func TestSchedule_EnqueueFailure(t *testing.T) {
	ctx, set := readSet(t, model("install", true))
	rec := &executor.Recorder{Err: errors.New("queue full")}

	plan, err := New(settings.Default(), rec, nil).Schedule(ctx, entity.DirectionInstall, set)
	require.ErrorContains(t, err, "queue full")
	assert.Nil(t, plan)
	assert.Empty(t, rec.Batches())
}

type reentrant struct {
	s   *DefaultScheduler
	set *entity.Set
	err error
}

func (r *reentrant) Enqueue(ctx context.Context, _ []executor.Batch) error {
	_, r.err = r.s.Schedule(ctx, entity.DirectionInstall, r.set)
	return nil
}

func TestSchedule_Reentrant(t *testing.T) {
	ctx, set := readSet(t, model("install", false))
	exec := &reentrant{set: set}
	exec.s = New(settings.Default(), exec, nil)

	_, err := exec.s.Schedule(ctx, entity.DirectionInstall, set)
	require.NoError(t, err)
	assert.ErrorIs(t, exec.err, ErrReentrant)

	_, err = exec.s.Schedule(ctx, entity.DirectionInstall, set)
	assert.NoError(t, err, "the guard is released after a pass")
}

func TestProgress(t *testing.T) {
	s := settings.Default()
	r := &actions.Result{Emitted: map[entity.Kind]map[actions.Action]int{
		entity.KindAssembly:  {actions.Create: 2, actions.NoOp: 4},
		entity.KindPartition: {actions.Remove: 1},
	}}
	assert.Equal(t, 2*50000+5000, Progress(s, r, nil))
	assert.Zero(t, Progress(s))
}
