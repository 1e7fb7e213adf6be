package matrix

import (
	"github.com/ethereum-optimism/infra/op-matrix/metrics"
	"github.com/ethereum-optimism/infra/op-matrix/runner"
)

// MetricsReporter is responsible for reporting metrics from matrix results.
type MetricsReporter interface {
	ReportResults(runID string, result *runner.MatrixResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the matrix results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(runID string, result *runner.MatrixResult) {
	metrics.RecordMatrix(
		runID,
		string(result.Status),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.NoResult,
		result.Duration,
	)
}
