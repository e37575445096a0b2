// Package settings holds the tunable parameters of a planning pass: target
// architecture, conflict policy, retry bound, per-kind costs, section texts
// and the names of the executor actions. Built-in defaults are embedded and
// a user YAML file is merged on top of them.
package settings

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Section holds the texts of one action-buffer section.
type Section struct {
	Operation   string `yaml:"operation" validate:"required"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// Sections are the install and uninstall texts of one kind.
type Sections struct {
	Install   Section `yaml:"install"`
	Uninstall Section `yaml:"uninstall"`
}

// Policy is the non-interactive conflict policy.
type Policy struct {
	Conflicts   string `yaml:"conflicts" validate:"oneof=abort retry ignore"`
	Unavailable string `yaml:"unavailable" validate:"oneof=abort retry ignore"`
}

// Settings is the complete set of planner settings.
type Settings struct {
	Architecture string                       `yaml:"architecture" validate:"omitempty,oneof=x86 x64 arm64"`
	MaxRetries   int                          `yaml:"max_retries" validate:"gte=0,lte=100"`
	RollbackDir  string                       `yaml:"rollback_dir"`
	Policy       Policy                       `yaml:"policy"`
	Costs        map[string]map[string]int    `yaml:"costs" validate:"dive,dive,gte=0"`
	Sections     map[string]Sections          `yaml:"sections" validate:"dive"`
	Actions      map[string]map[string]string `yaml:"actions"`
}

// Default returns the built-in settings.
func Default() *Settings {
	var s Settings
	if err := yaml.Unmarshal(defaultYAML, &s); err != nil {
		panic(fmt.Sprintf("settings: embedded defaults are invalid: %v", err))
	}
	return &s
}

// Load returns the defaults merged with the file at path. An empty path
// returns the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, s.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	var user Settings
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	// Scalars are only overridden when present, so absence must be
	// distinguishable from a zero value.
	var present map[string]any
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	s.merge(&user, present)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) merge(u *Settings, present map[string]any) {
	if _, ok := present["architecture"]; ok {
		s.Architecture = u.Architecture
	}
	if _, ok := present["max_retries"]; ok {
		s.MaxRetries = u.MaxRetries
	}
	if _, ok := present["rollback_dir"]; ok {
		s.RollbackDir = u.RollbackDir
	}
	if u.Policy.Conflicts != "" {
		s.Policy.Conflicts = u.Policy.Conflicts
	}
	if u.Policy.Unavailable != "" {
		s.Policy.Unavailable = u.Policy.Unavailable
	}
	for kind, costs := range u.Costs {
		if s.Costs[kind] == nil {
			s.Costs[kind] = make(map[string]int)
		}
		for action, c := range costs {
			s.Costs[kind][action] = c
		}
	}
	for kind, sec := range u.Sections {
		cur := s.Sections[kind]
		mergeSection(&cur.Install, sec.Install)
		mergeSection(&cur.Uninstall, sec.Uninstall)
		s.Sections[kind] = cur
	}
	for dir, names := range u.Actions {
		if s.Actions[dir] == nil {
			s.Actions[dir] = make(map[string]string)
		}
		for phase, name := range names {
			s.Actions[dir][phase] = name
		}
	}
}

func mergeSection(dst *Section, src Section) {
	if src.Operation != "" {
		dst.Operation = src.Operation
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Template != "" {
		dst.Template = src.Template
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	return nil
}

// Cost returns the progress cost of one action on one kind.
func (s *Settings) Cost(kind, action string) int {
	return s.Costs[kind][action]
}

// Section returns the section texts of a kind in a direction.
func (s *Settings) Section(kind string, uninstall bool) Section {
	if uninstall {
		return s.Sections[kind].Uninstall
	}
	return s.Sections[kind].Install
}

// ActionName returns the executor action name for a direction and phase,
// falling back to a generated name.
func (s *Settings) ActionName(direction, phase string) string {
	if name := s.Actions[direction][phase]; name != "" {
		return name
	}
	return direction + "_" + phase
}
