// Package executor defines the hand-off boundary between the scheduler and
// whatever applies the action buffers to the catalog.
package executor

import (
	"context"
	"slices"
	"sync"

	"github.com/vk/catalogplan/internal/actions"
	"github.com/vk/catalogplan/internal/entity"
)

// Batch is one deferred action: a phase of a pass together with its data.
// RollbackPrepare and Commit batches carry no buffer, only the rollback
// file shared by every batch of the pass.
type Batch struct {
	Phase        actions.Phase
	ActionName   string
	Direction    entity.Direction
	RollbackFile string
	Buffer       []byte
	Progress     int
}

// Executor receives the hand-off of a run. The batches of one call are
// complete and already in execution order.
type Executor interface {
	Enqueue(ctx context.Context, batches []Batch) error
}

// Recorder is an Executor that keeps every enqueued batch in memory.
type Recorder struct {
	mu      sync.Mutex
	batches []Batch
	// Err, when set, is returned by Enqueue instead of recording.
	Err error
}

var _ Executor = (*Recorder)(nil)

// Enqueue implements Executor.
func (r *Recorder) Enqueue(_ context.Context, batches []Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.batches = append(r.batches, batches...)
	return nil
}

// Batches returns a copy of everything recorded so far.
func (r *Recorder) Batches() []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.batches)
}
