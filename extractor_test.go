package strobe

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/go-cmp/cmp"
)

// echoSet is a minimal descriptor set: source → passthrough → one
// append-mode sink under namespace.values.
type echoSet struct {
	namespace string
	buildErr  error
}

func (s *echoSet) Namespace() string { return s.namespace }
func (s *echoSet) Options() Params   { return nil }

func (s *echoSet) Build(g *Graph, _ *Factory, source *OutPort, pool *Pool) error {
	if s.buildErr != nil {
		return s.buildErr
	}
	id := newPassthrough[float32](s.namespace + ".id")
	sink := NewPoolSink[float32](s.namespace+".sink", pool, PoolKey(s.namespace, "values"), SinkAppend)
	if err := g.Add(id); err != nil {
		return err
	}
	if err := g.Add(sink); err != nil {
		return err
	}
	if err := g.Connect(source, id.In()); err != nil {
		return err
	}
	return g.Connect(id.Out(), sink.In())
}

func TestNewExtractorValidation(t *testing.T) {
	f := NewFactory()
	sets := []DescriptorSet{&echoSet{namespace: "a"}}

	t.Run("nil factory", func(t *testing.T) {
		_, err := NewExtractor(nil, sets)
		assert.IsError(t, err, ErrInvalidConfiguration)
	})

	t.Run("no sets", func(t *testing.T) {
		_, err := NewExtractor(f, nil)
		assert.IsError(t, err, ErrInvalidConfiguration)
	})

	t.Run("duplicate namespace", func(t *testing.T) {
		_, err := NewExtractor(f, []DescriptorSet{
			&echoSet{namespace: "a"},
			&echoSet{namespace: "a"},
		})
		assert.IsError(t, err, ErrInvalidConfiguration)
	})
}

func TestExtractorRun(t *testing.T) {
	e, err := NewExtractor(NewFactory(), []DescriptorSet{
		&echoSet{namespace: "left"},
		&echoSet{namespace: "right"},
	})
	assert.NoError(t, err)

	samples := []float32{1, 2, 3, 4}
	pool, err := e.Run(context.Background(), samples)
	assert.NoError(t, err)

	for _, key := range []string{"left.values", "right.values"} {
		got, err := Values[float32](pool, key)
		assert.NoError(t, err)
		assert.Equal(t, samples, got)
	}
}

func TestExtractorRunDeterministic(t *testing.T) {
	e, err := NewExtractor(NewFactory(), []DescriptorSet{
		&echoSet{namespace: "echo"},
	}, WithChunkSize(3))
	assert.NoError(t, err)

	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i)
	}

	first, err := e.Run(context.Background(), samples)
	assert.NoError(t, err)
	for range 5 {
		again, err := e.Run(context.Background(), samples)
		assert.NoError(t, err)
		assert.Equal(t, first.Keys(), again.Keys())
		for _, key := range first.Keys() {
			a, err := Values[float32](first, key)
			assert.NoError(t, err)
			b, err := Values[float32](again, key)
			assert.NoError(t, err)
			if diff := cmp.Diff(a, b); diff != "" {
				t.Fatalf("key %q differs between runs (-first +again):\n%s", key, diff)
			}
		}
	}
}

func TestExtractorBuildFailure(t *testing.T) {
	cause := errors.New("missing algorithm")
	e, err := NewExtractor(NewFactory(), []DescriptorSet{
		&echoSet{namespace: "ok"},
		&echoSet{namespace: "broken", buildErr: cause},
	})
	assert.NoError(t, err)

	pool, err := e.Run(context.Background(), []float32{1})
	assert.Error(t, err)
	assert.IsError(t, err, cause)
	assert.Contains(t, err.Error(), `"broken"`)
	assert.Zero(t, pool)
}

func TestExtractorRunCancelled(t *testing.T) {
	e, err := NewExtractor(NewFactory(), []DescriptorSet{
		&echoSet{namespace: "echo"},
	})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool, err := e.Run(ctx, []float32{1, 2, 3})
	assert.IsError(t, err, context.Canceled)
	assert.Zero(t, pool)
}

func TestExtractorRunAll(t *testing.T) {
	e, err := NewExtractor(NewFactory(), []DescriptorSet{
		&echoSet{namespace: "echo"},
	}, WithWorkers(4))
	assert.NoError(t, err)

	inputs := map[string][]float32{
		"one":   {1},
		"two":   {1, 2},
		"three": {1, 2, 3},
	}
	pools, err := e.RunAll(context.Background(), inputs)
	assert.NoError(t, err)
	assert.Equal(t, len(inputs), len(pools))
	for name, samples := range inputs {
		got, err := Values[float32](pools[name], "echo.values")
		assert.NoError(t, err)
		assert.Equal(t, samples, got)
	}
}

func TestExtractorRunAllFailureCancels(t *testing.T) {
	cause := errors.New("bad build")
	e, err := NewExtractor(NewFactory(), []DescriptorSet{
		&echoSet{namespace: "echo", buildErr: cause},
	})
	assert.NoError(t, err)

	pools, err := e.RunAll(context.Background(), map[string][]float32{"in": {1}})
	assert.IsError(t, err, cause)
	assert.Contains(t, err.Error(), `"in"`)
	assert.Zero(t, pools)
}
