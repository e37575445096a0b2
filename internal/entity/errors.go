package entity

import "fmt"

// ReferenceError reports a manifest record that names an entity, unit or
// target that was never declared.
type ReferenceError struct {
	Kind  Kind
	Key   string
	Field string
	Ref   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s '%s' references unknown %s '%s'", e.Kind, e.Key, e.Field, e.Ref)
}
