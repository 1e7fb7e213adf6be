// Package runner drives the test matrix: the cross product of selected
// formats and discovered tests, executed strictly sequentially, with each
// run's exit status classified into the pass/fail/no-result ledger.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/ethereum-optimism/infra/op-matrix/executor"
	"github.com/ethereum-optimism/infra/op-matrix/logging"
	"github.com/ethereum-optimism/infra/op-matrix/metrics"
	"github.com/ethereum-optimism/infra/op-matrix/types"
)

// FormatEnvVar is the environment slot the active format is published into
// before each format's test batch. It stays set until the next format is
// selected or the process exits; freshly spawned tests inherit it and may
// branch their behavior on it.
const FormatEnvVar = "TESTMATRIX_FORMAT"

// MatrixRunner runs every test under every format exactly once and
// classifies the outcomes.
type MatrixRunner interface {
	RunMatrix(ctx context.Context) (*MatrixResult, error)
}

// ResultStats tracks test counts for a run
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	NoResult  int
	StartTime time.Time
	EndTime   time.Time
}

// MatrixResult captures the complete matrix run results
type MatrixResult struct {
	RunID    string
	Ledger   Ledger
	Results  []types.TestResult // chronological, one per (format, test) pair
	Status   types.TestStatus
	Duration time.Duration
	Stats    ResultStats
}

// Failed reports whether the run's verdict is failure. Only the failed
// ledger matters; no-result entries are informational.
func (r *MatrixResult) Failed() bool {
	return len(r.Ledger.Failed) > 0
}

// String returns a one-line human-readable summary of the run.
func (r *MatrixResult) String() string {
	return fmt.Sprintf("Matrix run %s: %s (%d tests: %d passed, %d failed, %d no result) in %.1fs",
		r.RunID, r.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.NoResult,
		r.Duration.Seconds())
}

// Config holds configuration for creating a new runner
type Config struct {
	Executor *executor.Executor
	Formats  []types.Format
	Tests    []string
	// Interpreter, when set, is prepended to each test path so tests run as
	// "<interpreter> <path>". When empty the test file is executed directly.
	Interpreter string
	// Stdout and Stderr are the sinks child process streams are directed at,
	// interleaved live with the executor's announcements. They default to
	// the orchestrator's own streams.
	Stdout io.Writer
	Stderr io.Writer
	Log    log.Logger
	// FileLogger, when set, persists each execution's record; its run ID
	// becomes the matrix run ID.
	FileLogger *logging.FileLogger
}

// matrixRunner implements MatrixRunner
type matrixRunner struct {
	executor    *executor.Executor
	formats     []types.Format
	tests       []string
	interpreter string
	stdout      io.Writer
	stderr      io.Writer
	log         log.Logger
	fileLogger  *logging.FileLogger
	runID       string
}

// NewMatrixRunner creates a new matrix runner instance. An empty test or
// format list is valid and yields an empty result.
func NewMatrixRunner(cfg Config) (MatrixRunner, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	var runID string
	if cfg.FileLogger != nil {
		runID = cfg.FileLogger.GetRunID()
	} else {
		runID = uuid.New().String()
	}

	return &matrixRunner{
		executor:    cfg.Executor,
		formats:     cfg.Formats,
		tests:       cfg.Tests,
		interpreter: cfg.Interpreter,
		stdout:      cfg.Stdout,
		stderr:      cfg.Stderr,
		log:         cfg.Log,
		fileLogger:  cfg.FileLogger,
		runID:       runID,
	}, nil
}

// RunMatrix runs the full formats × tests cross product in order: formats
// outer, tests inner, one subprocess at a time. A process launch failure or
// in-process command error aborts the whole run; a test's nonzero exit is
// recorded and the loop proceeds.
func (r *matrixRunner) RunMatrix(ctx context.Context) (*MatrixResult, error) {
	start := time.Now()
	result := &MatrixResult{
		RunID: r.runID,
		Stats: ResultStats{StartTime: start},
	}

	r.log.Info("Starting matrix run",
		"run_id", r.runID,
		"formats", len(r.formats),
		"tests", len(r.tests))

	for _, format := range r.formats {
		if err := r.selectFormat(format); err != nil {
			return nil, err
		}

		for _, test := range r.tests {
			entry, output, err := r.runOne(ctx, format, test)
			if err != nil {
				return nil, fmt.Errorf("test %q under format %q: %w", test, format.Name, err)
			}

			status := result.Ledger.Record(entry)
			result.Results = append(result.Results, types.TestResult{
				Test:     entry.Test,
				Format:   entry.Format,
				Status:   status,
				ExitCode: entry.ExitCode,
				Duration: entry.Duration,
				Stdout:   output,
			})
			metrics.RecordTest(r.runID, format.Name, status)

			if r.fileLogger != nil {
				last := &result.Results[len(result.Results)-1]
				if err := r.fileLogger.LogTestResult(last); err != nil {
					r.log.Error("Failed to write test log", "test", test, "error", err)
				}
			}
		}
	}

	r.finalize(result, start)
	r.log.Info("Matrix run completed", "run_id", r.runID, "status", result.Status)
	return result, nil
}

// selectFormat publishes the format into the process-wide environment so
// every subsequently spawned test inherits it.
func (r *matrixRunner) selectFormat(format types.Format) error {
	if err := os.Setenv(FormatEnvVar, format.Name); err != nil {
		return fmt.Errorf("failed to select format %q: %w", format.Name, err)
	}
	for _, k := range sortedKeys(format.Env) {
		if err := os.Setenv(k, format.Env[k]); err != nil {
			return fmt.Errorf("failed to set %s for format %q: %w", k, format.Name, err)
		}
	}
	if err := r.executor.Announce(executor.Shell(FormatEnvVar + "=" + format.Name)); err != nil {
		return err
	}
	r.log.Debug("Selected format", "format", format.Name)
	return nil
}

// runOne executes one (format, test) pair. Child output streams live to the
// configured sinks; when a file logger is attached, a tail of the combined
// output is teed off for the test's log file.
func (r *matrixRunner) runOne(ctx context.Context, format types.Format, test string) (Entry, string, error) {
	cmd := r.testCommand(test)

	stdout, stderr := r.stdout, r.stderr
	var tail *executor.TailBuffer
	if r.fileLogger != nil {
		tail = executor.NewTailBuffer(0)
		stdout = io.MultiWriter(stdout, tail)
		stderr = io.MultiWriter(stderr, tail)
	}

	t0 := time.Now()
	status, err := r.executor.Run(ctx, cmd, stdout, stderr)
	if err != nil {
		return Entry{}, "", err
	}

	var output string
	if tail != nil {
		output = string(tail.Bytes())
	}
	return Entry{
		Test:     test,
		Format:   format.Name,
		ExitCode: status,
		Duration: time.Since(t0),
	}, output, nil
}

func (r *matrixRunner) testCommand(test string) executor.Command {
	if r.interpreter != "" {
		return executor.Process(r.interpreter, test)
	}
	return executor.Process(test)
}

func (r *matrixRunner) finalize(result *MatrixResult, start time.Time) {
	end := time.Now()
	result.Duration = end.Sub(start)
	result.Stats.EndTime = end
	result.Stats.Total = result.Ledger.Total()
	result.Stats.Passed = len(result.Ledger.Passed)
	result.Stats.Failed = len(result.Ledger.Failed)
	result.Stats.NoResult = len(result.Ledger.NoResult)
	result.Status = determineStatus(result)
}

// determineStatus derives the run's display status. Failure wins outright;
// a run where nothing passed and something was inconclusive shows as
// no-result. Only failure affects the process exit code.
func determineStatus(result *MatrixResult) types.TestStatus {
	switch {
	case result.Stats.Failed > 0:
		return types.TestStatusFail
	case result.Stats.Total > 0 && result.Stats.Passed == 0:
		return types.TestStatusNoResult
	default:
		return types.TestStatusPass
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
