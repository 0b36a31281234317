package priority

import (
	"errors"
	"fmt"
)

// Sentinel errors describing the externally observable outcomes of the
// tree's public operations. Callers should compare against these with
// errors.Is; the concrete error additionally carries the offending stream
// id in its message.
var (
	// ErrDuplicateStream is returned by InsertStream when the given id is
	// already present in the tree. The tree is left unchanged.
	ErrDuplicateStream = errors.New("priority: stream already exists")

	// ErrMissingStream is returned by any operation that references an
	// unknown stream id, either as the target or as a named parent. The
	// tree is left unchanged.
	ErrMissingStream = errors.New("priority: stream not found")

	// ErrPriorityLoop is returned by Reprioritise when the ancestor-walk
	// bound used for cycle detection is exhausted without resolving. This
	// indicates the tree invariants have already been violated and is not
	// recoverable by retrying.
	ErrPriorityLoop = errors.New("priority: dependency loop detected")

	// ErrDeadlock is returned by Next when no stream anywhere under the
	// root is active. The caller should wait for an Unblock call before
	// retrying.
	ErrDeadlock = errors.New("priority: no active stream to schedule")
)

func duplicateStreamError(id uint32) error {
	return fmt.Errorf("%w: %d", ErrDuplicateStream, id)
}

func missingStreamError(id uint32) error {
	return fmt.Errorf("%w: %d", ErrMissingStream, id)
}

func priorityLoopError(id uint32) error {
	return fmt.Errorf("%w: stream %d", ErrPriorityLoop, id)
}
