package strobe

import (
	"context"
)

// DefaultChunkSize is how many values a VectorSource emits per Process
// call unless configured otherwise.
const DefaultChunkSize = 1024

// VectorSource feeds an in-memory slice into the graph, chunk by chunk.
// It is the test and pre-decoded-input entry point: no decoder, no I/O.
type VectorSource[T any] struct {
	name  string
	out   *OutPort
	data  []T
	pos   int
	chunk int
}

// NewVectorSource creates a source emitting data in chunks of chunkSize.
// chunkSize <= 0 uses DefaultChunkSize.
func NewVectorSource[T any](name string, data []T, chunkSize int) *VectorSource[T] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &VectorSource[T]{
		name:  name,
		out:   NewOutPort[T]("out"),
		data:  data,
		chunk: chunkSize,
	}
}

func (s *VectorSource[T]) Name() string { return s.name }

// Out is the source's single output port.
func (s *VectorSource[T]) Out() *OutPort { return s.out }

func (s *VectorSource[T]) Inputs() []*InPort   { return nil }
func (s *VectorSource[T]) Outputs() []*OutPort { return []*OutPort{s.out} }

// CanProcess reflects external data availability only. Downstream
// backpressure is reported from Process as ErrCapacityExceeded; folding
// it in here would make a blocked source indistinguishable from an
// exhausted one.
func (s *VectorSource[T]) CanProcess() bool {
	return s.pos < len(s.data)
}

func (s *VectorSource[T]) Process(_ context.Context) (Status, error) {
	n := min(s.chunk, len(s.data)-s.pos, s.out.Space())
	if n <= 0 {
		return NeedMoreInput, ErrCapacityExceeded
	}
	if err := WriteOutput(s.out, s.data[s.pos:s.pos+n]...); err != nil {
		return NeedMoreInput, err
	}
	s.pos += n
	if s.pos == len(s.data) {
		return Finished, nil
	}
	return Continue, nil
}

func (s *VectorSource[T]) Shutdown() error { return nil }
