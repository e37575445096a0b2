package scheduler

import (
	"context"
	"errors"

	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/executor"
)

// ErrReentrant is returned when Schedule is called while another pass of
// the same scheduler is still being built.
var ErrReentrant = errors.New("scheduler: a pass is already being scheduled")

// Scheduler builds and enqueues the batches of one pass.
//
// A pass walks the phases RollbackPrepare, RollbackExecute, DeferredExecute,
// CommitExecute and Commit in that order. Every batch of a pass shares one
// rollback file. Execute phases without work are left out, and a pass
// without any transition produces an empty plan and enqueues nothing.
//
// Batches are enqueued only after every phase was built, so a failure
// never leaves a partial pass behind.
type Scheduler interface {
	Schedule(ctx context.Context, d entity.Direction, set *entity.Set) (*Plan, error)
}

// Plan is what a pass handed to the executor.
type Plan struct {
	Direction    entity.Direction
	RollbackFile string
	Batches      []executor.Batch
	// Progress is the total cost of the execute phases, for progress
	// reporting only.
	Progress int
}

// Empty reports whether the pass had nothing to do.
func (p *Plan) Empty() bool { return len(p.Batches) == 0 }
