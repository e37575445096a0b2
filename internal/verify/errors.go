package verify

import (
	"fmt"

	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/decision"
	"github.com/vk/catalogplan/internal/entity"
)

// ConflictAbortedError is returned when the decider answers Abort.
type ConflictAbortedError struct {
	Kind     entity.Kind
	Key      string
	Conflict decision.Type
	Err      error
}

func (e *ConflictAbortedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s '%s': aborted on %s conflict: %v", e.Kind, e.Key, e.Conflict, e.Err)
	}
	return fmt.Sprintf("%s '%s': aborted on %s conflict", e.Kind, e.Key, e.Conflict)
}

func (e *ConflictAbortedError) Unwrap() error { return e.Err }

// RetriesExhaustedError is returned when a conflict is still there after
// the configured number of retries.
type RetriesExhaustedError struct {
	Kind     entity.Kind
	Key      string
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s '%s': giving up after %d attempts", e.Kind, e.Key, e.Attempts)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// EntityNotFoundError is returned for an entity that must already exist in
// the catalog but does not.
type EntityNotFoundError struct {
	Kind      entity.Kind
	Key       string
	Container catalog.Container
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found in catalog container %s", e.Kind, e.Key, e.Container)
}

// ReferencedNotInstalledError is returned for an entity an installing
// entity depends on that is neither installed nor being installed.
type ReferencedNotInstalledError struct {
	Kind entity.Kind
	Key  string
}

func (e *ReferencedNotInstalledError) Error() string {
	return fmt.Sprintf("%s '%s' is required by an installing entity but is neither installed nor being installed", e.Kind, e.Key)
}
