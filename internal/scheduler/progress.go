package scheduler

import (
	"github.com/vk/catalogplan/internal/actions"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/settings"
)

// Progress adds up cost × count of the actions emitted by the given
// results. Callers pass the execute phases only; rollback work is not
// part of the expected progress.
func Progress(s *settings.Settings, results ...*actions.Result) int {
	total := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		for kind, byAction := range r.Emitted {
			total += cost(s, kind, byAction)
		}
	}
	return total
}

func cost(s *settings.Settings, kind entity.Kind, byAction map[actions.Action]int) int {
	total := 0
	for a, n := range byAction {
		if a == actions.NoOp {
			continue
		}
		total += s.Cost(kind.String(), a.String()) * n
	}
	return total
}
