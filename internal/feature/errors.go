package feature

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument reports nil, destroyed or otherwise unusable inputs.
	ErrArgument = errors.New("invalid argument")
	// ErrStructural reports a malformed ancestor chain, e.g. a Feature
	// whose parent is not a FeatureSet.
	ErrStructural = errors.New("structural error")
	// ErrConsistency reports a child collection that changed size outside
	// the detach path of a mutating traversal.
	ErrConsistency = errors.New("consistency error")

	ErrDuplicate = errors.New("duplicate child id")
	ErrNotFound  = errors.New("child not found")
	ErrLevel     = errors.New("level mismatch")
	ErrAttached  = errors.New("node already has a parent")
	ErrDestroyed = errors.New("node destroyed")
)

// ExecError is returned by Execute when a callback fails. It records the
// level and id of the node where traversal stopped.
type ExecError struct {
	Level Level
	ID    ID
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute stopped at %s %q: %v", e.Level, e.ID, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
