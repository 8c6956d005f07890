package algorithms

import (
	"fmt"
	"math"

	"github.com/strobe-audio/strobe"
)

// Windowing multiplies each frame by a window function. The window is
// computed once for the first frame length seen and reused; frames of a
// different length are an error since the upstream cutter emits uniform
// frames.
type Windowing struct {
	windowType string
	window     []float32
}

var windowingSchema = strobe.Schema{
	{Name: "type", Kind: strobe.KindString,
		Enum: []string{"hann", "hamming", "triangular", "square"}, Default: "hann"},
}

// NewWindowing validates params and constructs the computer.
func NewWindowing(params strobe.Params) (*Windowing, error) {
	params, err := windowingSchema.Apply(params)
	if err != nil {
		return nil, err
	}
	return &Windowing{windowType: params.String("type", "hann")}, nil
}

func (w *Windowing) Compute(in [][]float32) ([][]float32, int, error) {
	out := make([][]float32, len(in))
	for i, frame := range in {
		windowed, err := w.apply(frame)
		if err != nil {
			return nil, 0, err
		}
		out[i] = windowed
	}
	return out, len(in), nil
}

func (w *Windowing) Flush(tail [][]float32) ([][]float32, error) {
	out, _, err := w.Compute(tail)
	return out, err
}

func (w *Windowing) apply(frame []float32) ([]float32, error) {
	if w.window == nil {
		w.window = makeWindow(w.windowType, len(frame))
	}
	if len(frame) != len(w.window) {
		return nil, fmt.Errorf("frame length %d, window length %d", len(frame), len(w.window))
	}
	out := make([]float32, len(frame))
	for i, v := range frame {
		out[i] = v * w.window[i]
	}
	return out, nil
}

func makeWindow(typ string, size int) []float32 {
	win := make([]float32, size)
	if size == 1 {
		win[0] = 1
		return win
	}
	n := float64(size - 1)
	for i := range win {
		x := float64(i)
		switch typ {
		case "hamming":
			win[i] = float32(0.54 - 0.46*math.Cos(2*math.Pi*x/n))
		case "triangular":
			win[i] = float32(1 - math.Abs((2*x-n)/n))
		case "square":
			win[i] = 1
		default: // hann
			win[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*x/n)))
		}
	}
	return win
}

func windowingBuilder(name string, params strobe.Params) (strobe.Node, error) {
	w, err := NewWindowing(params)
	if err != nil {
		return nil, err
	}
	return strobe.NewTransform[[]float32, []float32](name, 1, w), nil
}
