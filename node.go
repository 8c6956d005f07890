package strobe

import "context"

// Status is the result of one Process invocation.
type Status int

const (
	// Continue: the node did work and may have more to do.
	Continue Status = iota
	// NeedMoreInput: the node could not make progress with the input at
	// hand. If every upstream buffer has ended, the scheduler moves the
	// node to draining and calls Shutdown.
	NeedMoreInput
	// Finished: terminal. The node will never produce again; the
	// scheduler calls Shutdown exactly once afterwards.
	Finished
)

func (s Status) String() string {
	switch s {
	case Continue:
		return "continue"
	case NeedMoreInput:
		return "need-more-input"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Node does not know about any element types, because it would otherwise
// need an unbounded number of generic parameters. Generic types are
// hidden inside the concrete node implementations and their ports.
type Node interface {
	// Name identifies the node within its graph.
	Name() string

	// Inputs and Outputs are the node's ports, fixed for its lifetime.
	Inputs() []*InPort
	Outputs() []*OutPort

	// CanProcess is the scheduler's readiness predicate: enough input is
	// buffered (or, for sources, external data remains) to produce
	// useful output.
	CanProcess() bool

	// Process consumes available input and writes to output buffers. It
	// runs to completion; blocking on a peer is expressed by returning
	// before doing work, never by waiting.
	Process(ctx context.Context) (Status, error)

	// Shutdown flushes trailing internal state after the last Process.
	// A shutdown blocked by downstream backpressure may return
	// ErrCapacityExceeded and is retried; implementations must not
	// recompute flushed values on retry.
	Shutdown() error
}
