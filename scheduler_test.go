package strobe

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/go-cmp/cmp"
)

func buildPipeline(t *testing.T, data []int, connectOpts ...ConnectOption) (*Graph, *Pool) {
	t.Helper()
	g := NewGraph()
	pool := NewPool()
	src := NewVectorSource("src", data, 2)
	id := newPassthrough[int]("identity")
	sink := NewPoolSink[int]("sink", pool, "test.values", SinkAppend)
	g.MustAdd(src)
	g.MustAdd(id)
	g.MustAdd(sink)
	g.MustConnect(src.Out(), id.In(), connectOpts...)
	g.MustConnect(id.Out(), sink.In(), connectOpts...)
	return g, pool
}

func TestRunSourceIdentitySink(t *testing.T) {
	g, pool := buildPipeline(t, []int{1, 2, 3})

	assert.NoError(t, g.Run(context.Background()))

	got, err := Values[int](pool, "test.values")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	for _, e := range g.edges {
		assert.True(t, e.isDrained())
	}
}

func TestRunEmptySource(t *testing.T) {
	g, pool := buildPipeline(t, nil)
	assert.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 0, pool.Len())
}

func TestRunBoundedBuffersBackpressure(t *testing.T) {
	// Capacity 1 forces the scheduler to interleave producer and
	// consumer; the result must be identical to the unbounded run.
	data := make([]int, 100)
	for i := range data {
		data[i] = i
	}

	g, pool := buildPipeline(t, data, WithCapacity(1))
	assert.NoError(t, g.Run(context.Background()))

	got, err := Values[int](pool, "test.values")
	assert.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRunDeterministic(t *testing.T) {
	data := []int{5, 4, 3, 2, 1}

	extract := func() []int {
		g, pool := buildPipeline(t, data)
		assert.NoError(t, g.Run(context.Background()))
		got, err := Values[int](pool, "test.values")
		assert.NoError(t, err)
		return got
	}

	first := extract()
	for range 5 {
		if diff := cmp.Diff(first, extract()); diff != "" {
			t.Fatalf("runs differ (-first +again):\n%s", diff)
		}
	}
}

func TestRunFanOut(t *testing.T) {
	g := NewGraph()
	pool := NewPool()
	src := NewVectorSource("src", []int{1, 2, 3}, 0)
	sinkA := NewPoolSink[int]("sink_a", pool, "t.a", SinkAppend)
	sinkB := NewPoolSink[int]("sink_b", pool, "t.b", SinkAppend)
	g.MustAdd(src)
	g.MustAdd(sinkA)
	g.MustAdd(sinkB)
	g.MustConnect(src.Out(), sinkA.In())
	g.MustConnect(src.Out(), sinkB.In())

	assert.NoError(t, g.Run(context.Background()))

	a, err := Values[int](pool, "t.a")
	assert.NoError(t, err)
	b, err := Values[int](pool, "t.b")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, a)
	assert.Equal(t, []int{1, 2, 3}, b)
}

// hungry needs more input than its bounded upstream buffer can ever hold,
// which must be detected as a stall rather than spinning forever.
type hungry struct {
	in *InPort
}

func (h *hungry) Name() string                            { return "hungry" }
func (h *hungry) Inputs() []*InPort                       { return []*InPort{h.in} }
func (h *hungry) Outputs() []*OutPort                     { return nil }
func (h *hungry) CanProcess() bool                        { return h.in.Available() >= 10 }
func (h *hungry) Process(context.Context) (Status, error) { return NeedMoreInput, nil }
func (h *hungry) Shutdown() error {
	return h.in.Consume(h.in.Available())
}

// trickle emits single values forever and never marks end of stream by
// itself; paired with hungry behind a tiny buffer it produces a deadlock.
type trickle struct {
	out *OutPort
}

func (s *trickle) Name() string        { return "trickle" }
func (s *trickle) Inputs() []*InPort   { return nil }
func (s *trickle) Outputs() []*OutPort { return []*OutPort{s.out} }
func (s *trickle) CanProcess() bool    { return true }
func (s *trickle) Process(context.Context) (Status, error) {
	if err := WriteOutput(s.out, 1); err != nil {
		return NeedMoreInput, err
	}
	return Continue, nil
}
func (s *trickle) Shutdown() error { return nil }

func TestRunStalledGraph(t *testing.T) {
	g := NewGraph()
	src := &trickle{out: NewOutPort[int]("out")}
	h := &hungry{in: NewInPort[int]("in", 10)}
	g.MustAdd(src)
	g.MustAdd(h)
	g.MustConnect(src.out, h.in, WithCapacity(3))

	err := g.Run(context.Background())
	assert.Error(t, err)
	assert.IsError(t, err, ErrStalledGraph)

	var stalled *StalledError
	assert.True(t, errors.As(err, &stalled))
	assert.Equal(t, "trickle", stalled.LastRunnable)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, _ := buildPipeline(t, []int{1, 2, 3})
	err := g.Run(ctx)
	assert.Error(t, err)
	assert.IsError(t, err, context.Canceled)
}
