// internal/keypath/types.go
package keypath

// Level identifies which part of the ownership chain a path addresses.
type Level int

const (
	// LevelComponent addresses a component: `component`.
	LevelComponent Level = iota + 1
	// LevelInterface addresses an interface: `component.interface`.
	LevelInterface
	// LevelMethod addresses a method: `component.interface.method`.
	LevelMethod
)

// String returns a human readable name for the level.
func (l Level) String() string {
	switch l {
	case LevelComponent:
		return "component"
	case LevelInterface:
		return "interface"
	case LevelMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Path is the structured representation of a target inside an assembly.
type Path struct {
	Component string
	Interface string // empty for component-level paths
	Method    string // empty for component- and interface-level paths
}

// Level reports how deep the path reaches.
func (p Path) Level() Level {
	switch {
	case p.Method != "":
		return LevelMethod
	case p.Interface != "":
		return LevelInterface
	default:
		return LevelComponent
	}
}

// Parent returns the path one level up. The parent of a component path is
// the component path itself.
func (p Path) Parent() Path {
	switch p.Level() {
	case LevelMethod:
		return Path{Component: p.Component, Interface: p.Interface}
	default:
		return Path{Component: p.Component}
	}
}
