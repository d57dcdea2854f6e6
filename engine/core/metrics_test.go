package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordBuild(t *testing.T) {
	// Recording before initialization is a silent no-op.
	MetricsRecordBuild(5)
	assert.Equal(t, int64(0), MetricsBuildCount())

	require.NoError(t, MetricsInitialize())

	before := MetricsBuildCount()
	for i := 0; i < int(avgCount); i++ {
		MetricsRecordBuild(10)
	}

	assert.Equal(t, before+int64(avgCount), MetricsBuildCount())
	// A full window of identical times averages to that time.
	assert.InDelta(t, 10.0, MetricsBuildTime(), 1e-9)
}

func TestClockElapsed(t *testing.T) {
	clock := NewClock()
	clock.Start()
	clock.Update()

	assert.GreaterOrEqual(t, clock.Elapsed(), 0.0)
	// Elapsed reports nanoseconds, ElapsedMS the same span in milliseconds.
	assert.InDelta(t, clock.Elapsed()/1e6, clock.ElapsedMS(), 1e-9)
}
