package strobe

import (
	"context"
	"fmt"
)

// SinkMode selects how a PoolSink writes its key.
type SinkMode int

const (
	// SinkAppend accumulates every received value under the key.
	SinkAppend SinkMode = iota
	// SinkSingle overwrites, keeping only the most recent value.
	SinkSingle
)

// PoolSink terminates a branch of the graph by writing every received
// value into a ResultsPool under a fixed key. It is the only kind of node
// that touches the pool.
type PoolSink[T any] struct {
	name string
	in   *InPort
	pool *Pool
	key  string
	mode SinkMode
}

// NewPoolSink creates a sink writing to key in the given pool.
func NewPoolSink[T any](name string, pool *Pool, key string, mode SinkMode) *PoolSink[T] {
	return &PoolSink[T]{
		name: name,
		in:   NewInPort[T]("in", 1),
		pool: pool,
		key:  key,
		mode: mode,
	}
}

func (s *PoolSink[T]) Name() string { return s.name }

// In is the sink's single input port.
func (s *PoolSink[T]) In() *InPort { return s.in }

// Key is the pool key this sink writes under.
func (s *PoolSink[T]) Key() string { return s.key }

func (s *PoolSink[T]) Inputs() []*InPort   { return []*InPort{s.in} }
func (s *PoolSink[T]) Outputs() []*OutPort { return nil }

func (s *PoolSink[T]) CanProcess() bool {
	return s.in.Available() > 0
}

func (s *PoolSink[T]) Process(_ context.Context) (Status, error) {
	vals := ReadInput[T](s.in, 0)
	if len(vals) == 0 {
		return NeedMoreInput, nil
	}
	if err := s.store(vals); err != nil {
		return NeedMoreInput, err
	}
	if err := s.in.Consume(len(vals)); err != nil {
		return NeedMoreInput, err
	}
	return Continue, nil
}

// Shutdown drains anything left in the input buffer into the pool.
func (s *PoolSink[T]) Shutdown() error {
	vals := ReadInput[T](s.in, 0)
	if len(vals) == 0 {
		return nil
	}
	if err := s.store(vals); err != nil {
		return err
	}
	return s.in.Consume(len(vals))
}

func (s *PoolSink[T]) store(vals []T) error {
	for _, v := range vals {
		var err error
		switch s.mode {
		case SinkSingle:
			err = s.pool.Set(s.key, v)
		default:
			err = s.pool.Add(s.key, v)
		}
		if err != nil {
			return fmt.Errorf("sink %q: %w", s.name, err)
		}
	}
	return nil
}
