package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethereum-optimism/infra/op-matrix/types"
)

const (
	MetricsNamespace = "matrix"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusNoResult}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of test executions",
	}, []string{
		"run_id",
		"format",
		"result",
	})

	matrixResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "results",
		Help:      "Result of matrix runs",
	}, []string{
		"run_id",
		"result",
	})

	matrixTestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_total",
		Help:      "Total number of tests in a matrix run",
	}, []string{
		"run_id",
	})

	matrixTestPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_passed",
		Help:      "Number of passed tests in a matrix run",
	}, []string{
		"run_id",
	})

	matrixTestFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_failed",
		Help:      "Number of failed tests in a matrix run",
	}, []string{
		"run_id",
	})

	matrixTestNoResult = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_no_result",
		Help:      "Number of no-result tests in a matrix run",
	}, []string{
		"run_id",
	})

	matrixDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "duration",
		Help:      "Duration of matrix runs",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTest counts one (test, format) execution outcome.
func RecordTest(runID string, format string, result types.TestStatus) {
	if !isValidResult(result) {
		log.Error("RecordTest - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "tests_total",
			"run_id", runID,
			"format", format,
			"result", result)
	}
	testsTotal.WithLabelValues(runID, format, string(result)).Inc()
}

// RecordMatrix records the aggregate outcome of a whole matrix run.
func RecordMatrix(
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	noResult int,
	duration time.Duration,
) {
	matrixResults.WithLabelValues(runID, result).Set(1)
	matrixTestTotal.WithLabelValues(runID).Add(float64(total))
	matrixTestPassed.WithLabelValues(runID).Add(float64(passed))
	matrixTestFailed.WithLabelValues(runID).Add(float64(failed))
	matrixTestNoResult.WithLabelValues(runID).Add(float64(noResult))
	matrixDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
