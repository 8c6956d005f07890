package algorithms

import (
	"math"

	"github.com/strobe-audio/strobe"
)

// frameScalar lifts a per-frame scalar function into a Computer. These
// computers are stateless: flush just processes the leftover frames.
type frameScalar struct {
	fn func([]float32) float32
}

func (c frameScalar) Compute(in [][]float32) ([]float32, int, error) {
	out := make([]float32, len(in))
	for i, frame := range in {
		out[i] = c.fn(frame)
	}
	return out, len(in), nil
}

func (c frameScalar) Flush(tail [][]float32) ([]float32, error) {
	out, _, err := c.Compute(tail)
	return out, err
}

func energy(frame []float32) float32 {
	var sum float64
	for _, v := range frame {
		sum += float64(v) * float64(v)
	}
	return float32(sum)
}

func rms(frame []float32) float32 {
	if len(frame) == 0 {
		return 0
	}
	return float32(math.Sqrt(float64(energy(frame)) / float64(len(frame))))
}

func zeroCrossingRate(frame []float32) float32 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float32(crossings) / float32(len(frame)-1)
}

var emptySchema = strobe.Schema{}

func frameScalarBuilder(fn func([]float32) float32) strobe.Builder {
	return func(name string, params strobe.Params) (strobe.Node, error) {
		if err := emptySchema.Validate(params); err != nil {
			return nil, err
		}
		return strobe.NewTransform[[]float32, float32](name, 1, frameScalar{fn: fn}), nil
	}
}
