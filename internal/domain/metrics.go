package domain

import "time"

// MetricsCollector is implemented by the metrics package; components
// record through this interface so tests can pass a no-op.
type MetricsCollector interface {
	RecordProbe(assetName string, up bool, seconds float64)
	RecordCycle(d time.Duration, assets int)
	RecordSkippedCycle()
	RecordCommitError()
	RecordPurgedLogs(n int64)
	RecordNotification(assetName string)
}

// NopMetrics discards everything. Handy default for tests and the CLI.
type NopMetrics struct{}

func (NopMetrics) RecordProbe(string, bool, float64) {}
func (NopMetrics) RecordCycle(time.Duration, int)    {}
func (NopMetrics) RecordSkippedCycle()               {}
func (NopMetrics) RecordCommitError()                {}
func (NopMetrics) RecordPurgedLogs(int64)            {}
func (NopMetrics) RecordNotification(string)         {}
