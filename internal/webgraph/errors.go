package webgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrRatioConflict reports forced type counts that cannot meet the ratio targets.
	ErrRatioConflict = errors.New("forced types conflict with ratio targets")
	// ErrIDSpaceExhausted reports that no fresh page id could be drawn.
	ErrIDSpaceExhausted = errors.New("page id space exhausted")
	// ErrSeedUnavailable reports a link that has no unused seed left.
	ErrSeedUnavailable = errors.New("no unused seed for link target")
	// ErrInvariantViolated reports a built site that breaks a structural invariant.
	ErrInvariantViolated = errors.New("site invariant violated")
)

// BuildError aborts startup: the configuration cannot be realized.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed at %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// InternalError signals a broken invariant inside the builder itself.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
