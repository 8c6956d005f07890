package strobe

import (
	"context"
	"fmt"
)

// Computer is the algorithm-author surface for one-input, one-output
// streaming computations. Compute receives everything buffered and
// reports how much it consumed; Flush receives the unconsumed tail once
// upstream has ended, for algorithms that hold partial state (a last
// incomplete frame, a running aggregate).
type Computer[In, Out any] interface {
	Compute(in []In) (out []Out, consumed int, err error)
	Flush(tail []In) ([]Out, error)
}

// Transform adapts a Computer into a graph node. It hides the generic
// element types behind the Node interface and takes care of the
// peek/consume discipline: input is only acknowledged after the computed
// output has been accepted downstream, so a backpressured write never
// recomputes or drops values.
type Transform[In, Out any] struct {
	name string
	in   *InPort
	out  *OutPort
	comp Computer[In, Out]

	pendingOut      []Out
	pendingConsumed int
	havePending     bool

	flushOut  []Out
	flushDone bool
}

// NewTransform wraps comp as a node. minInput is how many input values
// must be buffered before the node is runnable.
func NewTransform[In, Out any](name string, minInput int, comp Computer[In, Out]) *Transform[In, Out] {
	return &Transform[In, Out]{
		name: name,
		in:   NewInPort[In]("in", minInput),
		out:  NewOutPort[Out]("out"),
		comp: comp,
	}
}

func (t *Transform[In, Out]) Name() string { return t.name }

// In is the node's input port.
func (t *Transform[In, Out]) In() *InPort { return t.in }

// Out is the node's output port.
func (t *Transform[In, Out]) Out() *OutPort { return t.out }

func (t *Transform[In, Out]) Inputs() []*InPort   { return []*InPort{t.in} }
func (t *Transform[In, Out]) Outputs() []*OutPort { return []*OutPort{t.out} }

func (t *Transform[In, Out]) CanProcess() bool {
	if t.havePending {
		return t.out.Space() > 0
	}
	return t.in.Ready() && t.out.Space() > 0
}

func (t *Transform[In, Out]) Process(_ context.Context) (Status, error) {
	if t.havePending {
		return t.emitPending()
	}

	vals := ReadInput[In](t.in, 0)
	if len(vals) == 0 {
		return NeedMoreInput, nil
	}

	out, consumed, err := t.comp.Compute(vals)
	if err != nil {
		return NeedMoreInput, fmt.Errorf("%s: %w", t.name, err)
	}
	if consumed == 0 && len(out) == 0 {
		return NeedMoreInput, nil
	}

	t.pendingOut = out
	t.pendingConsumed = consumed
	t.havePending = true
	return t.emitPending()
}

// emitPending writes as much of the cached batch as downstream space
// allows. A batch larger than the smallest connected buffer goes out over
// several invocations as the consumer drains; input is acknowledged only
// once the whole batch has landed.
func (t *Transform[In, Out]) emitPending() (Status, error) {
	if len(t.pendingOut) > 0 {
		n := min(t.out.Space(), len(t.pendingOut))
		if n == 0 {
			return NeedMoreInput, ErrCapacityExceeded
		}
		if err := WriteOutput(t.out, t.pendingOut[:n]...); err != nil {
			return NeedMoreInput, err
		}
		t.pendingOut = t.pendingOut[n:]
		if len(t.pendingOut) > 0 {
			return Continue, nil
		}
	}
	if err := t.in.Consume(t.pendingConsumed); err != nil {
		return NeedMoreInput, err
	}
	t.pendingOut = nil
	t.pendingConsumed = 0
	t.havePending = false
	return Continue, nil
}

// Shutdown flushes the computer with whatever tail remains unconsumed.
// The flush result is computed once and cached; a write blocked by
// downstream backpressure returns ErrCapacityExceeded and the remaining
// cached values go out on retry.
func (t *Transform[In, Out]) Shutdown() error {
	if t.havePending {
		if _, err := t.emitPending(); err != nil {
			return err
		}
		if t.havePending {
			return ErrCapacityExceeded
		}
	}
	if !t.flushDone {
		tail := ReadInput[In](t.in, 0)
		out, err := t.comp.Flush(tail)
		if err != nil {
			return fmt.Errorf("%s: flush: %w", t.name, err)
		}
		if err := t.in.Consume(len(tail)); err != nil {
			return err
		}
		t.flushOut = out
		t.flushDone = true
	}
	for len(t.flushOut) > 0 {
		n := min(t.out.Space(), len(t.flushOut))
		if n == 0 {
			return ErrCapacityExceeded
		}
		if err := WriteOutput(t.out, t.flushOut[:n]...); err != nil {
			return err
		}
		t.flushOut = t.flushOut[n:]
	}
	return nil
}
