package algorithms

import (
	"fmt"

	"github.com/strobe-audio/strobe"
)

// FrameCutter slices a sample stream into (possibly overlapping) frames
// of frameSize samples, advancing by hopSize. The final partial frame is
// zero-padded and emitted on flush.
type FrameCutter struct {
	frameSize int
	hopSize   int
}

var frameCutterSchema = strobe.Schema{
	{Name: "frameSize", Kind: strobe.KindInt, HasRange: true, Min: 2, Max: 65536, Default: 1024},
	{Name: "hopSize", Kind: strobe.KindInt, HasRange: true, Min: 1, Max: 65536, Default: 512},
}

// NewFrameCutter validates params and constructs the computer.
func NewFrameCutter(params strobe.Params) (*FrameCutter, error) {
	params, err := frameCutterSchema.Apply(params)
	if err != nil {
		return nil, err
	}
	fc := &FrameCutter{
		frameSize: params.Int("frameSize", 1024),
		hopSize:   params.Int("hopSize", 512),
	}
	if fc.hopSize > fc.frameSize {
		return nil, fmt.Errorf("%w: hopSize %d exceeds frameSize %d",
			strobe.ErrInvalidConfiguration, fc.hopSize, fc.frameSize)
	}
	return fc, nil
}

func (c *FrameCutter) Compute(in []float32) ([][]float32, int, error) {
	if len(in) < c.frameSize {
		return nil, 0, nil
	}
	count := (len(in)-c.frameSize)/c.hopSize + 1
	frames := make([][]float32, count)
	for i := range count {
		start := i * c.hopSize
		frame := make([]float32, c.frameSize)
		copy(frame, in[start:start+c.frameSize])
		frames[i] = frame
	}
	return frames, count * c.hopSize, nil
}

// Flush pads the leftover tail to a full frame. With hopSize < frameSize
// the tail includes the overlap carried between frames, matching the
// frame positions a longer stream would have produced.
func (c *FrameCutter) Flush(tail []float32) ([][]float32, error) {
	if len(tail) == 0 {
		return nil, nil
	}
	frame := make([]float32, c.frameSize)
	copy(frame, tail)
	return [][]float32{frame}, nil
}

func frameCutterBuilder(name string, params strobe.Params) (strobe.Node, error) {
	c, err := NewFrameCutter(params)
	if err != nil {
		return nil, err
	}
	return strobe.NewTransform[float32, []float32](name, c.frameSize, c), nil
}
