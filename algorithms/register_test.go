package algorithms

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/strobe-audio/strobe"
)

func TestRegisterAll(t *testing.T) {
	f := strobe.NewFactory()
	assert.NoError(t, RegisterAll(f))

	want := []string{
		"energy", "framecutter", "gain", "identity", "movingaverage",
		"rms", "stat", "windowing", "zerocrossingrate",
	}
	assert.Equal(t, want, f.Names())

	// Registering twice collides on every name.
	assert.IsError(t, RegisterAll(f), strobe.ErrDuplicateAlgorithm)
}

func TestRegisteredBuildersValidate(t *testing.T) {
	f := strobe.NewFactory()
	assert.NoError(t, RegisterAll(f))

	n, err := f.Create("framecutter", "cut", strobe.Params{"frameSize": 8, "hopSize": 4})
	assert.NoError(t, err)
	assert.Equal(t, "cut", n.Name())

	_, err = f.Create("framecutter", "cut", strobe.Params{"frameSize": "big"})
	assert.IsError(t, err, strobe.ErrInvalidConfiguration)

	_, err = f.Create("identity", "id", strobe.Params{"bogus": 1})
	assert.IsError(t, err, strobe.ErrInvalidConfiguration)
}
