package strobe

import (
	"fmt"
	"reflect"
)

// InPort is a named, typed input of a node. It is bound to exactly one
// upstream buffer by Graph.Connect.
type InPort struct {
	name string
	elem reflect.Type

	// min is how many values must be buffered before the port is
	// considered ready. Draining relaxes this to "anything at all".
	min int

	owner Node
	buf   edge
}

// OutPort is a named, typed output of a node. One output may feed several
// buffers; every connected consumer sees every value.
type OutPort struct {
	name string
	elem reflect.Type

	owner Node
	bufs  []edge

	// newEdge builds a buffer of the port's element type without the
	// graph knowing that type. Captured at construction.
	newEdge func(capacity int) edge
}

// NewInPort declares a typed input requiring at least min buffered values
// per Process call. min < 1 is treated as 1.
func NewInPort[T any](name string, min int) *InPort {
	if min < 1 {
		min = 1
	}
	return &InPort{
		name: name,
		elem: reflect.TypeFor[T](),
		min:  min,
	}
}

// NewOutPort declares a typed output.
func NewOutPort[T any](name string) *OutPort {
	return &OutPort{
		name: name,
		elem: reflect.TypeFor[T](),
		newEdge: func(capacity int) edge {
			return NewBuffer[T](capacity)
		},
	}
}

func (p *InPort) Name() string { return p.name }

// ElemType is the port's element type, fixed for the node's lifetime.
func (p *InPort) ElemType() reflect.Type { return p.elem }

// Connected reports whether the port has been wired to a buffer.
func (p *InPort) Connected() bool { return p.buf != nil }

// Available reports how many values can currently be read.
func (p *InPort) Available() int {
	if p.buf == nil {
		return 0
	}
	return p.buf.available()
}

// Ready reports whether the port satisfies its minimum, or holds anything
// at all once the producer has ended.
func (p *InPort) Ready() bool {
	if p.buf == nil {
		return false
	}
	n := p.buf.available()
	if p.buf.endOfStream() {
		return n > 0
	}
	return n >= p.min
}

// EndOfStream reports whether the upstream producer has ended.
func (p *InPort) EndOfStream() bool {
	return p.buf != nil && p.buf.endOfStream()
}

// Consume acknowledges n read values.
func (p *InPort) Consume(n int) error {
	if p.buf == nil {
		return fmt.Errorf("%w: input %q not connected", ErrDanglingPort, p.name)
	}
	return p.buf.consume(n)
}

func (p *OutPort) Name() string { return p.name }

// ElemType is the port's element type, fixed for the node's lifetime.
func (p *OutPort) ElemType() reflect.Type { return p.elem }

// Connected reports whether at least one consumer is wired.
func (p *OutPort) Connected() bool { return len(p.bufs) > 0 }

// Space is the smallest remaining capacity across connected buffers: how
// many values a write is guaranteed to place everywhere.
func (p *OutPort) Space() int {
	space := unboundedSpace
	for _, b := range p.bufs {
		if s := b.space(); s < space {
			space = s
		}
	}
	return space
}

func (p *OutPort) markEndOfStream() {
	for _, b := range p.bufs {
		b.markEndOfStream()
	}
}

// ReadInput peeks up to max values from a typed input. It panics if the
// port was built for a different element type; Connect guarantees this
// cannot happen for wired graphs.
func ReadInput[T any](p *InPort, max int) []T {
	if p.buf == nil {
		return nil
	}
	return p.buf.(*Buffer[T]).Read(max)
}

// WriteOutput writes values to every buffer connected to a typed output.
// All-or-nothing across the whole fan-out: if any connected buffer lacks
// space, nothing is written anywhere and ErrCapacityExceeded is returned,
// so producers can retry without consumers seeing duplicates.
func WriteOutput[T any](p *OutPort, vals ...T) error {
	if p.Space() < len(vals) {
		return fmt.Errorf("output %q: %w", p.name, ErrCapacityExceeded)
	}
	for _, b := range p.bufs {
		if err := b.(*Buffer[T]).Write(vals...); err != nil {
			return fmt.Errorf("output %q: %w", p.name, err)
		}
	}
	return nil
}
