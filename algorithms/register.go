// Package algorithms is the builtin catalog of streaming computations.
// Each algorithm is a Computer wrapped into a Transform node and exposed
// through a factory builder keyed by its identifier.
package algorithms

import "github.com/strobe-audio/strobe"

// RegisterAll registers the builtin catalog with the given factory.
func RegisterAll(f *strobe.Factory) error {
	builders := map[string]strobe.Builder{
		"framecutter":      frameCutterBuilder,
		"windowing":        windowingBuilder,
		"energy":           frameScalarBuilder(energy),
		"rms":              frameScalarBuilder(rms),
		"zerocrossingrate": frameScalarBuilder(zeroCrossingRate),
		"identity":         identityBuilder,
		"gain":             gainBuilder,
		"movingaverage":    movingAverageBuilder,
		"stat":             statBuilder,
	}
	for name, b := range builders {
		if err := f.Register(name, b); err != nil {
			return err
		}
	}
	return nil
}
