package entity

import "github.com/vk/catalogplan/internal/config"

// Source supplies the declared records of one pass and decides which install
// units belong to the architecture being installed.
type Source interface {
	Model() *config.Model
	ArchitectureMatches(unit string) bool
}

// ModelSource is a Source over an already loaded model.
type ModelSource struct {
	model  *config.Model
	target string
	arch   map[string]string
}

// NewModelSource returns a Source filtering units by the target
// architecture. An empty target accepts every unit.
func NewModelSource(m *config.Model, target string) *ModelSource {
	arch := make(map[string]string, len(m.Units))
	for _, u := range m.Units {
		arch[u.Name] = u.Architecture
	}
	return &ModelSource{model: m, target: target, arch: arch}
}

func (s *ModelSource) Model() *config.Model { return s.model }

// ArchitectureMatches accepts units without an architecture, neutral units
// and units built for the target. Unknown units are accepted so that the
// reader can report them properly.
func (s *ModelSource) ArchitectureMatches(unit string) bool {
	a := s.arch[unit]
	return s.target == "" || a == "" || a == "neutral" || a == s.target
}
