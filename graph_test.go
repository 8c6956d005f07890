package strobe

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// passthrough is a minimal test node forwarding values unchanged.
// Defined here to avoid an import cycle with the algorithms package.
type passthrough[T any] struct{}

func (passthrough[T]) Compute(in []T) ([]T, int, error) {
	out := make([]T, len(in))
	copy(out, in)
	return out, len(in), nil
}

func (passthrough[T]) Flush(tail []T) ([]T, error) {
	out := make([]T, len(tail))
	copy(out, tail)
	return out, nil
}

func newPassthrough[T any](name string) *Transform[T, T] {
	return NewTransform[T, T](name, 1, passthrough[T]{})
}

func TestGraphAdd(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		g := NewGraph()
		assert.NoError(t, g.Add(newPassthrough[int]("a")))
		err := g.Add(newPassthrough[int]("a"))
		assert.Error(t, err)
		assert.IsError(t, err, ErrNodeAlreadyExists)
	})

	t.Run("add after finalize", func(t *testing.T) {
		g := NewGraph()
		src := NewVectorSource("src", []int{1}, 0)
		sink := NewPoolSink[int]("sink", NewPool(), "test.values", SinkAppend)
		g.MustAdd(src)
		g.MustAdd(sink)
		g.MustConnect(src.Out(), sink.In())
		assert.NoError(t, g.Finalize())
		assert.Error(t, g.Add(newPassthrough[int]("late")))
	})
}

func TestGraphConnectTypeMismatch(t *testing.T) {
	g := NewGraph()
	src := NewVectorSource("src", []float32{1}, 0)
	sink := NewPoolSink[string]("sink", NewPool(), "test.values", SinkAppend)
	g.MustAdd(src)
	g.MustAdd(sink)

	err := g.Connect(src.Out(), sink.In())
	assert.Error(t, err)
	assert.IsError(t, err, ErrTypeMismatch)
}

func TestGraphConnectUnknownNode(t *testing.T) {
	g := NewGraph()
	src := NewVectorSource("src", []int{1}, 0)
	sink := NewPoolSink[int]("sink", NewPool(), "test.values", SinkAppend)
	g.MustAdd(src)
	// sink never added

	err := g.Connect(src.Out(), sink.In())
	assert.Error(t, err)
	assert.IsError(t, err, ErrNodeNotFound)
}

func TestGraphConnectDoubleProducer(t *testing.T) {
	g := NewGraph()
	a := NewVectorSource("a", []int{1}, 0)
	b := NewVectorSource("b", []int{2}, 0)
	sink := NewPoolSink[int]("sink", NewPool(), "test.values", SinkAppend)
	g.MustAdd(a)
	g.MustAdd(b)
	g.MustAdd(sink)

	assert.NoError(t, g.Connect(a.Out(), sink.In()))
	assert.Error(t, g.Connect(b.Out(), sink.In()))
}

func TestGraphCycleDetected(t *testing.T) {
	g := NewGraph()
	a := newPassthrough[int]("a")
	b := newPassthrough[int]("b")
	g.MustAdd(a)
	g.MustAdd(b)

	assert.NoError(t, g.Connect(a.Out(), b.In()))
	err := g.Connect(b.Out(), a.In())
	assert.Error(t, err)
	assert.IsError(t, err, ErrCycleDetected)
}

func TestGraphFinalizeDanglingPort(t *testing.T) {
	t.Run("unconnected input", func(t *testing.T) {
		g := NewGraph()
		g.MustAdd(newPassthrough[int]("a"))
		err := g.Finalize()
		assert.Error(t, err)
		assert.IsError(t, err, ErrDanglingPort)
	})

	t.Run("unconnected output", func(t *testing.T) {
		g := NewGraph()
		src := NewVectorSource("src", []int{1}, 0)
		g.MustAdd(src)
		err := g.Finalize()
		assert.Error(t, err)
		assert.IsError(t, err, ErrDanglingPort)
	})
}

func TestGraphTopologicalOrderDeterministic(t *testing.T) {
	build := func() []Node {
		g := NewGraph()
		pool := NewPool()
		src := NewVectorSource("src", []int{1}, 0)
		a := newPassthrough[int]("a")
		b := newPassthrough[int]("b")
		sinkA := NewPoolSink[int]("sink_a", pool, "t.a", SinkAppend)
		sinkB := NewPoolSink[int]("sink_b", pool, "t.b", SinkAppend)
		g.MustAdd(src)
		g.MustAdd(a)
		g.MustAdd(b)
		g.MustAdd(sinkA)
		g.MustAdd(sinkB)
		g.MustConnect(src.Out(), a.In())
		g.MustConnect(src.Out(), b.In())
		g.MustConnect(a.Out(), sinkA.In())
		g.MustConnect(b.Out(), sinkB.In())
		assert.NoError(t, g.Finalize())
		return g.topo
	}

	first := build()
	for range 5 {
		again := build()
		assert.Equal(t, len(first), len(again))
		for i := range first {
			assert.Equal(t, first[i].Name(), again[i].Name())
		}
	}
}

func TestGraphRunFinalizesFirst(t *testing.T) {
	g := NewGraph()
	g.MustAdd(newPassthrough[int]("orphan"))
	err := g.Run(context.Background())
	assert.Error(t, err)
	assert.IsError(t, err, ErrDanglingPort)
}
