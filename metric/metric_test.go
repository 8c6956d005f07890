package metric

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun(StatusOK, 10*time.Millisecond, 3)
	m.ObserveRun(StatusFailed, time.Millisecond, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.DescriptorsWritten))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRun(StatusOK, time.Second, 1)
	assert.Zero(t, m.Registry())
}
