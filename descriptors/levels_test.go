package descriptors

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/strobe-audio/strobe"
)

func TestLevelsSetRun(t *testing.T) {
	set, err := NewLevelsSet("", strobe.Params{
		"frameSize": 4,
		"hopSize":   4,
		"smoothing": 2,
	})
	assert.NoError(t, err)
	assert.Equal(t, NamespaceLevels, set.Namespace())

	// A constant signal has RMS 1 in every frame, so every derived level
	// value is exactly 1.
	samples := make([]float32, 16)
	for i := range samples {
		samples[i] = 1
	}
	pool := runSet(t, set, samples)

	loudness, err := strobe.Values[float32](pool, "levels.loudness")
	assert.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1}, loudness)

	mean, err := strobe.Value[float32](pool, "levels.loudness_mean")
	assert.NoError(t, err)
	assert.Equal(t, float32(1), mean)

	max, err := strobe.Value[float32](pool, "levels.loudness_max")
	assert.NoError(t, err)
	assert.Equal(t, float32(1), max)
}

func TestLevelsSetAggregatesTrackPeaks(t *testing.T) {
	set, err := NewLevelsSet("", strobe.Params{"frameSize": 2, "hopSize": 2})
	assert.NoError(t, err)

	// Two quiet frames, one loud frame.
	pool := runSet(t, set, []float32{0, 0, 0, 0, 2, 2})

	max, err := strobe.Value[float32](pool, "levels.loudness_max")
	assert.NoError(t, err)
	assert.Equal(t, float32(2), max)

	mean, err := strobe.Value[float32](pool, "levels.loudness_mean")
	assert.NoError(t, err)
	if mean <= 0 || mean >= 2 {
		t.Fatalf("loudness_mean = %v, want strictly between 0 and 2", mean)
	}
}

func TestLevelsSetNodeOrderDeterministic(t *testing.T) {
	build := func() []string {
		g := strobe.NewGraph()
		src := strobe.NewVectorSource[float32]("input", nil, 0)
		assert.NoError(t, g.Add(src))
		set, err := NewLevelsSet("", nil)
		assert.NoError(t, err)
		assert.NoError(t, set.Build(g, testFactory(t), src.Out(), strobe.NewPool()))

		var names []string
		for _, n := range g.Nodes() {
			names = append(names, n.Name())
		}
		return names
	}

	first := build()
	for range 5 {
		assert.Equal(t, first, build())
	}
}

func TestLevelsSetEmptyInput(t *testing.T) {
	set, err := NewLevelsSet("", nil)
	assert.NoError(t, err)

	// No samples means no frames: the run completes with every key
	// unwritten rather than failing.
	pool := runSet(t, set, nil)
	assert.Equal(t, 0, pool.Len())
	assert.False(t, pool.Contains("levels.loudness_mean"))
}

func TestLevelsSetOptions(t *testing.T) {
	_, err := NewLevelsSet("", strobe.Params{"smoothing": 0})
	assert.IsError(t, err, strobe.ErrInvalidConfiguration)

	set, err := NewLevelsSet("mylevels", nil)
	assert.NoError(t, err)
	assert.Equal(t, "mylevels", set.Namespace())
	assert.Equal(t, 8, set.Options().Int("smoothing", 0))
}
