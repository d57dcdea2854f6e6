package core

import "sync"

const avgCount uint8 = 30

// MetricsState keeps a rolling window of synthesis durations so long
// sessions can report a stable average instead of the last spike.
type MetricsState struct {
	avgCounter    uint8
	msTimes       [avgCount]float64
	msAvg         float64
	totalBuilds   int64
	accumulatedMS float64

	mu sync.Mutex
}

var onceMetrics sync.Once
var metricsState *MetricsState

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

// MetricsRecordBuild folds one synthesis duration (in milliseconds) into
// the rolling average. Safe to call before MetricsInitialize; it is a no-op
// in that case.
func MetricsRecordBuild(elapsedMS float64) {
	if metricsState == nil {
		return
	}
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()

	metricsState.msTimes[metricsState.avgCounter] = elapsedMS
	if metricsState.avgCounter == avgCount-1 {
		sum := float64(0)
		for i := uint8(0); i < avgCount; i++ {
			sum += metricsState.msTimes[i]
		}
		metricsState.msAvg = sum / float64(avgCount)
	}
	metricsState.avgCounter++
	metricsState.avgCounter %= avgCount

	metricsState.totalBuilds++
	metricsState.accumulatedMS += elapsedMS
}

// MetricsBuildTime returns the rolling average build time in milliseconds.
func MetricsBuildTime() float64 {
	if metricsState == nil {
		return 0
	}
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	return metricsState.msAvg
}

// MetricsBuildCount returns how many syntheses have been recorded.
func MetricsBuildCount() int64 {
	if metricsState == nil {
		return 0
	}
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	return metricsState.totalBuilds
}
