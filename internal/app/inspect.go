package app

import (
	"fmt"

	"github.com/vk/catalogplan/internal/actionbuf"
	"github.com/vk/catalogplan/internal/localexecutor"
)

// SpooledBatch is one batch of a spool with its decoded buffer.
type SpooledBatch struct {
	localexecutor.Entry `yaml:",inline"`
	Sections            []actionbuf.Section `yaml:"sections,omitempty"`
}

// Inspect reads the spool at dir and decodes every buffered batch.
func Inspect(dir string) ([]SpooledBatch, error) {
	idx, err := localexecutor.ReadIndex(dir)
	if err != nil {
		return nil, err
	}

	out := make([]SpooledBatch, 0, len(idx.Batches))
	for _, e := range idx.Batches {
		b := SpooledBatch{Entry: e}
		buf, err := localexecutor.ReadBuffer(dir, e)
		if err != nil {
			return nil, fmt.Errorf("reading %s batch: %w", e.Action, err)
		}
		if len(buf) > 0 {
			if b.Sections, err = actionbuf.Decode(buf); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", e.File, err)
			}
		}
		out = append(out, b)
	}
	return out, nil
}
