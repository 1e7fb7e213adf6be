// Package matrix orchestrates a matrix of test program runs, one execution
// per (format, test) pair, and aggregates the outcomes into a single verdict.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ethereum-optimism/infra/op-matrix/executor"
	"github.com/ethereum-optimism/infra/op-matrix/exitcodes"
	"github.com/ethereum-optimism/infra/op-matrix/logging"
	"github.com/ethereum-optimism/infra/op-matrix/reporting"
	"github.com/ethereum-optimism/infra/op-matrix/runner"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

// Matrix implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &Matrix{}

// Matrix is the orchestrator service: it schedules matrix runs, prints the
// results, and reports metrics.
type Matrix struct {
	ctx        context.Context
	config     *Config
	version    string
	runner     runner.MatrixRunner
	scheduler  MatrixScheduler
	reporter   MetricsReporter
	fileLogger *logging.FileLogger
	result     *runner.MatrixResult

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Matrix, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating matrix orchestrator with config",
		"tests", len(config.Tests),
		"formats", len(config.Formats),
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"dryRun", config.DryRun)

	// Dry runs and listings must not touch the filesystem, so no log
	// directory is created for them.
	var fileLogger *logging.FileLogger
	if !config.DryRun && !config.ListOnly {
		runID := uuid.New().String()
		var err error
		fileLogger, err = logging.NewFileLogger(config.LogDir, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
	}

	exec := executor.New(executor.Config{
		Verbose: !config.Quiet,
		DryRun:  config.DryRun,
		Log:     config.Log,
	})

	matrixRunner, err := runner.NewMatrixRunner(runner.Config{
		Executor:    exec,
		Formats:     config.Formats,
		Tests:       config.Tests,
		Interpreter: config.Interpreter,
		Log:         config.Log,
		FileLogger:  fileLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix runner: %w", err)
	}

	return &Matrix{
		ctx:              ctx,
		config:           config,
		version:          version,
		runner:           matrixRunner,
		scheduler:        NewDefaultMatrixScheduler(config.RunInterval, config.RunOnce, config.Log),
		reporter:         NewDefaultMetricsReporter(),
		fileLogger:       fileLogger,
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the matrix once or periodically at the configured interval.
// Start implements the cliapp.Lifecycle interface.
func (m *Matrix) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			m.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	m.ctx = ctx

	if m.config.ListOnly {
		m.listTests()
		go func() {
			m.shutdownCallback(nil)
		}()
		return nil
	}

	if m.config.RunOnce {
		m.config.Log.Info("Starting op-matrix in run-once mode")
	} else {
		m.config.Log.Info("Starting op-matrix in continuous mode", "interval", m.config.RunInterval)
	}

	m.scheduler.RegisterCallback(m.runMatrix)

	if err := m.scheduler.Start(ctx); err != nil {
		// Errors surfacing here are runtime errors, not test failures
		m.config.Log.Error("Runtime error running matrix", "error", err)
		return err
	}

	if m.config.RunOnce {
		m.config.Log.Info("Matrix run completed, exiting (run-once mode)")

		if m.result != nil && m.result.Failed() {
			m.config.Log.Warn("Run-once matrix completed with failures, returning exit code 1")
			return NewTestFailureError(m.result.String())
		}

		// Only need to call this when we're in run-once mode and all tests passed
		go func() {
			m.shutdownCallback(nil)
		}()
		return nil
	}

	m.config.Log.Debug("op-matrix started successfully")
	return nil
}

// runMatrix runs the full matrix and processes the results
func (m *Matrix) runMatrix() error {
	m.config.Log.Info("Running matrix...")
	result, err := m.runner.RunMatrix(m.ctx)
	if err != nil {
		// This is a runtime error (not a test failure)
		m.config.Log.Error("Runtime error running matrix", "error", err)
		return NewRuntimeError(err)
	}
	m.result = result

	if !m.config.Quiet {
		reporting.WriteTable(os.Stdout, result)
	}
	reporting.WriteSummary(os.Stdout, result, m.config.ReportPassed)

	m.reporter.ReportResults(result.RunID, result)

	if m.fileLogger != nil {
		if err := m.fileLogger.LogSummary(result.String()); err != nil {
			m.config.Log.Error("Failed to write summary log", "error", err)
		}
	}

	m.config.Log.Info("Matrix run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// listTests prints the discovered tests without running anything.
func (m *Matrix) listTests() {
	for _, test := range m.config.Tests {
		fmt.Println(test)
	}
}

// Stop stops the op-matrix service.
// Stop implements the cliapp.Lifecycle interface.
func (m *Matrix) Stop(ctx context.Context) error {
	m.config.Log.Info("Stopping op-matrix")
	if err := m.scheduler.Stop(); err != nil {
		return err
	}
	m.config.Log.Info("op-matrix stopped successfully")
	return nil
}

// Stopped returns true if the op-matrix service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (m *Matrix) Stopped() bool {
	return m.scheduler.Stopped()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (m *Matrix) WaitForShutdown(ctx context.Context) error {
	return m.scheduler.WaitForShutdown(ctx)
}
