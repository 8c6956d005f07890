package algorithms

import (
	"github.com/strobe-audio/strobe"
)

// Identity passes values through unchanged. Useful for wiring and as the
// smallest possible processing stage in tests.
type Identity[T any] struct{}

func (Identity[T]) Compute(in []T) ([]T, int, error) {
	out := make([]T, len(in))
	copy(out, in)
	return out, len(in), nil
}

func (Identity[T]) Flush(tail []T) ([]T, error) {
	out := make([]T, len(tail))
	copy(out, tail)
	return out, nil
}

// Gain multiplies each scalar by a constant factor.
type Gain struct {
	factor float32
}

var gainSchema = strobe.Schema{
	{Name: "factor", Kind: strobe.KindFloat, Default: 1.0},
}

// NewGain validates params and constructs the computer.
func NewGain(params strobe.Params) (*Gain, error) {
	params, err := gainSchema.Apply(params)
	if err != nil {
		return nil, err
	}
	return &Gain{factor: float32(params.Float("factor", 1.0))}, nil
}

func (g *Gain) Compute(in []float32) ([]float32, int, error) {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = v * g.factor
	}
	return out, len(in), nil
}

func (g *Gain) Flush(tail []float32) ([]float32, error) {
	out, _, err := g.Compute(tail)
	return out, err
}

// MovingAverage is a causal moving average over a scalar stream: each
// output is the mean of the last size inputs (fewer at the head).
type MovingAverage struct {
	size    int
	history []float32
	sum     float64
}

var movingAverageSchema = strobe.Schema{
	{Name: "size", Kind: strobe.KindInt, HasRange: true, Min: 1, Max: 1 << 20, Default: 4},
}

// NewMovingAverage validates params and constructs the computer.
func NewMovingAverage(params strobe.Params) (*MovingAverage, error) {
	params, err := movingAverageSchema.Apply(params)
	if err != nil {
		return nil, err
	}
	return &MovingAverage{size: params.Int("size", 4)}, nil
}

func (m *MovingAverage) Compute(in []float32) ([]float32, int, error) {
	out := make([]float32, len(in))
	for i, v := range in {
		m.history = append(m.history, v)
		m.sum += float64(v)
		if len(m.history) > m.size {
			m.sum -= float64(m.history[0])
			m.history = m.history[1:]
		}
		out[i] = float32(m.sum / float64(len(m.history)))
	}
	return out, len(in), nil
}

func (m *MovingAverage) Flush(tail []float32) ([]float32, error) {
	out, _, err := m.Compute(tail)
	return out, err
}

// Stat accumulates a scalar stream and emits one summary value on flush:
// mean, variance, min or max. An empty stream emits nothing, leaving the
// downstream key unwritten.
type Stat struct {
	statistic string

	count    int
	sum      float64
	sumSq    float64
	min, max float64
}

var statSchema = strobe.Schema{
	{Name: "statistic", Kind: strobe.KindString,
		Enum: []string{"mean", "variance", "min", "max"}, Default: "mean"},
}

// NewStat validates params and constructs the computer.
func NewStat(params strobe.Params) (*Stat, error) {
	params, err := statSchema.Apply(params)
	if err != nil {
		return nil, err
	}
	return &Stat{statistic: params.String("statistic", "mean")}, nil
}

func (s *Stat) Compute(in []float32) ([]float32, int, error) {
	for _, v := range in {
		s.observe(float64(v))
	}
	return nil, len(in), nil
}

func (s *Stat) Flush(tail []float32) ([]float32, error) {
	for _, v := range tail {
		s.observe(float64(v))
	}
	if s.count == 0 {
		return nil, nil
	}
	mean := s.sum / float64(s.count)
	switch s.statistic {
	case "variance":
		return []float32{float32(s.sumSq/float64(s.count) - mean*mean)}, nil
	case "min":
		return []float32{float32(s.min)}, nil
	case "max":
		return []float32{float32(s.max)}, nil
	default:
		return []float32{float32(mean)}, nil
	}
}

func (s *Stat) observe(v float64) {
	if s.count == 0 || v < s.min {
		s.min = v
	}
	if s.count == 0 || v > s.max {
		s.max = v
	}
	s.count++
	s.sum += v
	s.sumSq += v * v
}

func identityBuilder(name string, params strobe.Params) (strobe.Node, error) {
	if err := emptySchema.Validate(params); err != nil {
		return nil, err
	}
	return strobe.NewTransform[float32, float32](name, 1, Identity[float32]{}), nil
}

func gainBuilder(name string, params strobe.Params) (strobe.Node, error) {
	g, err := NewGain(params)
	if err != nil {
		return nil, err
	}
	return strobe.NewTransform[float32, float32](name, 1, g), nil
}

func movingAverageBuilder(name string, params strobe.Params) (strobe.Node, error) {
	m, err := NewMovingAverage(params)
	if err != nil {
		return nil, err
	}
	return strobe.NewTransform[float32, float32](name, 1, m), nil
}

func statBuilder(name string, params strobe.Params) (strobe.Node, error) {
	s, err := NewStat(params)
	if err != nil {
		return nil, err
	}
	return strobe.NewTransform[float32, float32](name, 1, s), nil
}
