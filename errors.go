package strobe

import (
	"errors"
	"fmt"
)

// Assembly-time errors. Any of these aborts graph construction before a
// single value is produced.
var (
	ErrTypeMismatch  = errors.New("port type mismatch")
	ErrCycleDetected = errors.New("cycle detected")
	ErrDanglingPort  = errors.New("dangling port")

	ErrNodeAlreadyExists = errors.New("node exists already")
	ErrNodeNotFound      = errors.New("node not found")
)

// Factory and configuration errors.
var (
	ErrUnknownAlgorithm     = errors.New("unknown algorithm")
	ErrDuplicateAlgorithm   = errors.New("algorithm already registered")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Pool errors.
var (
	ErrModeConflict = errors.New("pool key mode conflict")
	ErrKeyNotFound  = errors.New("pool key not found")
)

// Execution errors. ErrCapacityExceeded is a backpressure signal between
// a producing node and the scheduler; it never escapes Graph.Run.
var (
	ErrCapacityExceeded = errors.New("buffer capacity exceeded")
	ErrStalledGraph     = errors.New("graph stalled")
)

// StalledError reports a scheduling deadlock: no node was runnable while
// at least one buffer still held data. It carries the identity of the
// last node that made progress to help diagnose the topology bug.
type StalledError struct {
	LastRunnable string
}

func (e *StalledError) Error() string {
	if e.LastRunnable == "" {
		return "graph stalled: no node ever ran"
	}
	return fmt.Sprintf("graph stalled: last runnable node %q", e.LastRunnable)
}

func (e *StalledError) Unwrap() error {
	return ErrStalledGraph
}
