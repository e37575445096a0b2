// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface. It spools every batch to a directory, one
// file per buffer plus a YAML index, for a later run to pick up.
package localexecutor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/executor"
	"github.com/vk/catalogplan/internal/fsutil"
)

// IndexFile is the name of the spool index inside the spool directory.
const IndexFile = "index.yaml"

// Entry describes one spooled batch.
type Entry struct {
	File         string `yaml:"file,omitempty"`
	Direction    string `yaml:"direction"`
	Phase        string `yaml:"phase"`
	Action       string `yaml:"action"`
	RollbackFile string `yaml:"rollback_file"`
	Progress     int    `yaml:"progress"`
	Size         int    `yaml:"size"`
}

// Index is the content of the spool index.
type Index struct {
	Batches []Entry `yaml:"batches"`
}

// ErrSpoolExists is returned when the spool directory already holds a plan.
var ErrSpoolExists = errors.New("spool directory already holds a plan")

// Spool implements executor.Executor by writing batches to Dir. Every
// Enqueue produces a complete spool: the batches are staged next to Dir
// and moved into place once all of them were written.
type Spool struct {
	Dir string
	// Replace allows Enqueue to replace a spool that already holds a plan.
	Replace bool
}

var _ executor.Executor = (*Spool)(nil)

// New creates a spool writing into dir.
func New(dir string) *Spool {
	return &Spool{Dir: dir}
}

// Enqueue implements executor.Executor.
func (s *Spool) Enqueue(ctx context.Context, batches []executor.Batch) error {
	logger := ctxlog.FromContext(ctx)
	if !s.Replace {
		if err := checkEmpty(s.Dir); err != nil {
			return err
		}
	}

	parent := filepath.Dir(s.Dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating spool directory: %w", err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(s.Dir)+"-staging-*")
	if err != nil {
		return fmt.Errorf("creating spool staging directory: %w", err)
	}
	defer os.RemoveAll(staging)
	if err := os.Chmod(staging, 0o755); err != nil {
		return fmt.Errorf("creating spool staging directory: %w", err)
	}

	idx := &Index{Batches: make([]Entry, 0, len(batches))}
	for _, b := range batches {
		e := Entry{
			Direction:    b.Direction.String(),
			Phase:        b.Phase.String(),
			Action:       b.ActionName,
			RollbackFile: b.RollbackFile,
			Progress:     b.Progress,
			Size:         len(b.Buffer),
		}
		if b.Phase.Buffered() {
			e.File = fmt.Sprintf("%03d-%s-%s.msgpack", len(idx.Batches)+1, e.Direction, e.Phase)
			if err := os.WriteFile(filepath.Join(staging, e.File), b.Buffer, 0o644); err != nil {
				return fmt.Errorf("spooling %s batch: %w", e.Phase, err)
			}
		}
		idx.Batches = append(idx.Batches, e)
		logger.Debug("Batch spooled", "action", e.Action, "file", e.File, "bytes", e.Size)
	}

	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encoding spool index: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(staging, IndexFile), data, 0o644); err != nil {
		return fmt.Errorf("writing spool index: %w", err)
	}
	if err := swap(staging, s.Dir); err != nil {
		return err
	}
	logger.Info("Batches spooled", "dir", s.Dir, "count", len(batches))
	return nil
}

// checkEmpty fails when dir exists and has any content.
func checkEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading spool directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrSpoolExists, dir)
	}
	return nil
}

// swap moves staging to dir. A previous dir is moved aside first and
// restored if the move fails.
func swap(staging, dir string) error {
	old := staging + ".old"
	moved := true
	if err := os.Rename(dir, old); errors.Is(err, fs.ErrNotExist) {
		moved = false
	} else if err != nil {
		return fmt.Errorf("moving previous spool aside: %w", err)
	}

	if err := os.Rename(staging, dir); err != nil {
		if moved {
			_ = os.Rename(old, dir)
		}
		return fmt.Errorf("moving spool into place: %w", err)
	}
	if moved {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("removing previous spool: %w", err)
		}
	}
	return nil
}

// ReadIndex loads the index of a spool directory. A missing index is an
// empty spool.
func ReadIndex(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading spool index: %w", err)
	}
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing spool index: %w", err)
	}
	return &idx, nil
}

// ReadBuffer returns the spooled buffer of an entry.
func ReadBuffer(dir string, e Entry) ([]byte, error) {
	if e.File == "" {
		return nil, nil
	}
	return os.ReadFile(filepath.Join(dir, e.File))
}
