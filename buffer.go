package strobe

import (
	"fmt"
	"reflect"
)

// edge is the type-erased view of a Buffer. The graph and scheduler only
// ever see edges; typed access stays inside the generic Buffer and the
// port helpers, so the element type does not leak into graph bookkeeping.
type edge interface {
	elemType() reflect.Type
	writeAny(vals ...any) error
	readAny(max int) []any
	consume(n int) error
	available() int
	space() int
	markEndOfStream()
	endOfStream() bool
	isDrained() bool
	cursors() (written, consumed int)
}

// Buffer is a single-producer, single-consumer sequence of values of one
// element type. Reads peek; Consume acknowledges. A capacity of 0 means
// unbounded.
type Buffer[T any] struct {
	data []T
	cap  int

	written  int
	consumed int

	eos bool
}

// NewBuffer creates a buffer with the given capacity. capacity <= 0 is
// unbounded.
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer[T]{cap: capacity}
}

// Write appends values. It is all-or-nothing: if a bounded buffer cannot
// hold every value, nothing is written and ErrCapacityExceeded is
// returned so the producer can retry after the consumer drains.
func (b *Buffer[T]) Write(vals ...T) error {
	if b.eos {
		return fmt.Errorf("write after end of stream")
	}
	if b.cap > 0 && len(b.data)+len(vals) > b.cap {
		return fmt.Errorf("%w: %d buffered, %d incoming, capacity %d",
			ErrCapacityExceeded, len(b.data), len(vals), b.cap)
	}
	b.data = append(b.data, vals...)
	b.written += len(vals)
	return nil
}

// Read returns up to max buffered values without consuming them. max <= 0
// returns everything available. The returned slice aliases the buffer and
// is only valid until the next Consume.
func (b *Buffer[T]) Read(max int) []T {
	if max <= 0 || max > len(b.data) {
		max = len(b.data)
	}
	return b.data[:max]
}

// Consume advances the read cursor past n values.
func (b *Buffer[T]) Consume(n int) error {
	if n < 0 || n > len(b.data) {
		return fmt.Errorf("consume %d of %d buffered", n, len(b.data))
	}
	b.data = b.data[n:]
	b.consumed += n
	return nil
}

// Available reports how many values can currently be read.
func (b *Buffer[T]) Available() int {
	return len(b.data)
}

const unboundedSpace = int(^uint(0) >> 1)

// Space reports how many values can be written without exceeding
// capacity. Unbounded buffers report a large constant.
func (b *Buffer[T]) Space() int {
	if b.cap <= 0 {
		return unboundedSpace
	}
	return b.cap - len(b.data)
}

// MarkEndOfStream signals that no further writes will occur. Idempotent.
func (b *Buffer[T]) MarkEndOfStream() {
	b.eos = true
}

// EndOfStream reports whether the producer has finished.
func (b *Buffer[T]) EndOfStream() bool {
	return b.eos
}

// IsDrained reports whether end of stream is marked and every value has
// been consumed.
func (b *Buffer[T]) IsDrained() bool {
	return b.eos && len(b.data) == 0
}

func (b *Buffer[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (b *Buffer[T]) writeAny(vals ...any) error {
	typed := make([]T, len(vals))
	for i, v := range vals {
		tv, ok := v.(T)
		if !ok {
			return fmt.Errorf("%w: buffer holds %s, got %T",
				ErrTypeMismatch, reflect.TypeFor[T](), v)
		}
		typed[i] = tv
	}
	return b.Write(typed...)
}

func (b *Buffer[T]) readAny(max int) []any {
	vals := b.Read(max)
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func (b *Buffer[T]) consume(n int) error { return b.Consume(n) }
func (b *Buffer[T]) available() int      { return b.Available() }
func (b *Buffer[T]) space() int          { return b.Space() }
func (b *Buffer[T]) markEndOfStream()    { b.MarkEndOfStream() }
func (b *Buffer[T]) endOfStream() bool   { return b.EndOfStream() }
func (b *Buffer[T]) isDrained() bool     { return b.IsDrained() }

func (b *Buffer[T]) cursors() (int, int) { return b.written, b.consumed }

var _ edge = (*Buffer[float32])(nil)
