package descriptors

import (
	"github.com/strobe-audio/strobe"
)

// NamespaceLevels is the default pool prefix for the levels set.
const NamespaceLevels = "levels"

// LevelsSet tracks signal level over time: a smoothed per-frame loudness
// curve (append mode) plus its overall mean and maximum (single-value
// mode, written once on flush).
type LevelsSet struct {
	namespace string
	options   strobe.Params
}

var levelsSchema = strobe.Schema{
	{Name: "frameSize", Kind: strobe.KindInt, HasRange: true, Min: 2, Max: 65536, Default: 1024},
	{Name: "hopSize", Kind: strobe.KindInt, HasRange: true, Min: 1, Max: 65536, Default: 1024},
	{Name: "smoothing", Kind: strobe.KindInt, HasRange: true, Min: 1, Max: 1024, Default: 8},
}

// NewLevelsSet validates options and creates the set under the given
// namespace prefix. An empty namespace uses NamespaceLevels.
func NewLevelsSet(namespace string, options strobe.Params) (*LevelsSet, error) {
	if namespace == "" {
		namespace = NamespaceLevels
	}
	options, err := levelsSchema.Apply(options)
	if err != nil {
		return nil, strobe.BuildError(namespace, err)
	}
	return &LevelsSet{namespace: namespace, options: options}, nil
}

func (s *LevelsSet) Namespace() string      { return s.namespace }
func (s *LevelsSet) Options() strobe.Params { return s.options.Clone() }

// Build wires source → framecutter → rms → movingaverage → loudness sink,
// with the rms stream also feeding mean and max aggregates.
func (s *LevelsSet) Build(g *strobe.Graph, f *strobe.Factory, source *strobe.OutPort, pool *strobe.Pool) error {
	cutter, err := addAlgorithm(g, f, "framecutter", s.node("framecutter"), strobe.Params{
		"frameSize": s.options.Int("frameSize", 1024),
		"hopSize":   s.options.Int("hopSize", 1024),
	})
	if err != nil {
		return err
	}
	rms, err := addAlgorithm(g, f, "rms", s.node("rms"), nil)
	if err != nil {
		return err
	}
	smooth, err := addAlgorithm(g, f, "movingaverage", s.node("smoothing"), strobe.Params{
		"size": s.options.Int("smoothing", 8),
	})
	if err != nil {
		return err
	}
	mean, err := addAlgorithm(g, f, "stat", s.node("mean"), strobe.Params{"statistic": "mean"})
	if err != nil {
		return err
	}
	max, err := addAlgorithm(g, f, "stat", s.node("max"), strobe.Params{"statistic": "max"})
	if err != nil {
		return err
	}

	if err := g.Connect(source, cutter.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(cutter.Outputs()[0], rms.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(rms.Outputs()[0], smooth.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(rms.Outputs()[0], mean.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(rms.Outputs()[0], max.Inputs()[0]); err != nil {
		return err
	}

	loudness := strobe.NewPoolSink[float32](
		s.node("sink_loudness"), pool, strobe.PoolKey(s.namespace, "loudness"), strobe.SinkAppend)
	meanSink := strobe.NewPoolSink[float32](
		s.node("sink_mean"), pool, strobe.PoolKey(s.namespace, "loudness_mean"), strobe.SinkSingle)
	maxSink := strobe.NewPoolSink[float32](
		s.node("sink_max"), pool, strobe.PoolKey(s.namespace, "loudness_max"), strobe.SinkSingle)

	// Slice, not map: sink insertion order feeds the scheduler's
	// tie-break and must not vary between runs.
	taps := []struct {
		sink     *strobe.PoolSink[float32]
		upstream strobe.Node
	}{
		{loudness, smooth},
		{meanSink, mean},
		{maxSink, max},
	}
	for _, tap := range taps {
		if err := g.Add(tap.sink); err != nil {
			return err
		}
		if err := g.Connect(tap.upstream.Outputs()[0], tap.sink.In()); err != nil {
			return err
		}
	}
	return nil
}

func (s *LevelsSet) node(suffix string) string {
	return s.namespace + "." + suffix
}
