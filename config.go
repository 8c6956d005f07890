package strobe

import (
	"log/slog"

	"github.com/strobe-audio/strobe/metric"
)

// Option is a function that configures an Extractor.
type Option func(*Extractor)

// WithLog sets the logger for the extractor.
var WithLog = func(log *slog.Logger) Option {
	return func(e *Extractor) {
		e.log = log
	}
}

// WithWorkers sets how many inputs RunAll processes concurrently.
// n < 1 keeps the previous value.
var WithWorkers = func(n int) Option {
	return func(e *Extractor) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithChunkSize sets how many samples the input source emits per
// scheduler invocation.
var WithChunkSize = func(n int) Option {
	return func(e *Extractor) {
		e.chunkSize = n
	}
}

// WithMetrics attaches a metrics registry. Without it the extractor
// records nothing.
var WithMetrics = func(m *metric.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

// NullWriter is a writer that discards all data.
type NullWriter struct{}

func (NullWriter) Write([]byte) (int, error) { return 0, nil }

// NullLogger creates a logger that discards all output.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
