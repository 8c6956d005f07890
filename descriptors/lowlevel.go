// Package descriptors holds the concrete descriptor sets: namespaced,
// configured bundles of related descriptors wired from the algorithm
// catalog into an extraction graph.
package descriptors

import (
	"github.com/strobe-audio/strobe"
)

// NamespaceLowLevel is the default pool prefix for the low-level set.
const NamespaceLowLevel = "lowlevel"

// LowLevelSet computes per-frame low-level descriptors: frame energy and
// RMS over windowed frames, zero-crossing rate over raw frames. All keys
// are append-mode, one value per frame.
type LowLevelSet struct {
	namespace string
	options   strobe.Params
}

var lowLevelSchema = strobe.Schema{
	{Name: "sampleRate", Kind: strobe.KindFloat, HasRange: true, Min: 8000, Max: 192000, Default: 44100.0},
	{Name: "frameSize", Kind: strobe.KindInt, HasRange: true, Min: 2, Max: 65536, Default: 2048},
	{Name: "hopSize", Kind: strobe.KindInt, HasRange: true, Min: 1, Max: 65536, Default: 1024},
	{Name: "windowType", Kind: strobe.KindString,
		Enum: []string{"hann", "hamming", "triangular", "square"}, Default: "hann"},
}

// NewLowLevelSet validates options and creates the set under the given
// namespace prefix. An empty namespace uses NamespaceLowLevel.
func NewLowLevelSet(namespace string, options strobe.Params) (*LowLevelSet, error) {
	if namespace == "" {
		namespace = NamespaceLowLevel
	}
	options, err := lowLevelSchema.Apply(options)
	if err != nil {
		return nil, strobe.BuildError(namespace, err)
	}
	return &LowLevelSet{namespace: namespace, options: options}, nil
}

func (s *LowLevelSet) Namespace() string      { return s.namespace }
func (s *LowLevelSet) Options() strobe.Params { return s.options.Clone() }

// Build wires source → framecutter → windowing → {energy, rms} and
// framecutter → zerocrossingrate, each ending in an append-mode sink.
func (s *LowLevelSet) Build(g *strobe.Graph, f *strobe.Factory, source *strobe.OutPort, pool *strobe.Pool) error {
	cutterParams := strobe.Params{
		"frameSize": s.options.Int("frameSize", 2048),
		"hopSize":   s.options.Int("hopSize", 1024),
	}
	cutter, err := addAlgorithm(g, f, "framecutter", s.node("framecutter"), cutterParams)
	if err != nil {
		return err
	}
	window, err := addAlgorithm(g, f, "windowing", s.node("windowing"),
		strobe.Params{"type": s.options.String("windowType", "hann")})
	if err != nil {
		return err
	}
	energy, err := addAlgorithm(g, f, "energy", s.node("energy"), nil)
	if err != nil {
		return err
	}
	rms, err := addAlgorithm(g, f, "rms", s.node("rms"), nil)
	if err != nil {
		return err
	}
	zcr, err := addAlgorithm(g, f, "zerocrossingrate", s.node("zcr"), nil)
	if err != nil {
		return err
	}

	if err := g.Connect(source, cutter.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(cutter.Outputs()[0], window.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(window.Outputs()[0], energy.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(window.Outputs()[0], rms.Inputs()[0]); err != nil {
		return err
	}
	if err := g.Connect(cutter.Outputs()[0], zcr.Inputs()[0]); err != nil {
		return err
	}

	// Slice, not map: sink insertion order feeds the scheduler's
	// tie-break and must not vary between runs.
	taps := []struct {
		node  strobe.Node
		local string
	}{
		{energy, "energy"},
		{rms, "rms"},
		{zcr, "zcr"},
	}
	for _, tap := range taps {
		sink := strobe.NewPoolSink[float32](
			s.node("sink_"+tap.local), pool, strobe.PoolKey(s.namespace, tap.local), strobe.SinkAppend)
		if err := g.Add(sink); err != nil {
			return err
		}
		if err := g.Connect(tap.node.Outputs()[0], sink.In()); err != nil {
			return err
		}
	}
	return nil
}

func (s *LowLevelSet) node(suffix string) string {
	return s.namespace + "." + suffix
}

// addAlgorithm creates a node through the factory and adds it to the
// graph in one step.
func addAlgorithm(g *strobe.Graph, f *strobe.Factory, algorithm, name string, params strobe.Params) (strobe.Node, error) {
	n, err := f.Create(algorithm, name, params)
	if err != nil {
		return nil, err
	}
	if err := g.Add(n); err != nil {
		return nil, err
	}
	return n, nil
}
