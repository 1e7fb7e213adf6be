// Package logging persists matrix run output to disk: one directory per run,
// one log file per (test, format) execution, plus a run summary.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/ethereum-optimism/infra/op-matrix/types"
)

const (
	RunDirectoryPrefix = "testrun-" // Standardized prefix for run directories
	SummaryFilename    = "summary.log"
)

// FileLogger handles writing test output to files
type FileLogger struct {
	baseDir string // Base directory for logs
	logDir  string // Directory for this run's logs
	runID   string // Current run ID
	mu      sync.Mutex
}

// NewFileLogger creates a FileLogger rooted at baseDir for the given run.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID is required")
	}

	logDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &FileLogger{
		baseDir: baseDir,
		logDir:  logDir,
		runID:   runID,
	}, nil
}

// GetRunID returns the run ID this logger writes under.
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// GetBaseDir returns the base log directory.
func (l *FileLogger) GetBaseDir() string {
	return l.baseDir
}

// GetLogDir returns this run's log directory.
func (l *FileLogger) GetLogDir() string {
	return l.logDir
}

// LogTestResult writes one test execution's record to
// <logDir>/<format>/<test>.log. ANSI escapes in the captured output are
// stripped so the files stay readable in any pager.
func (l *FileLogger) LogTestResult(result *types.TestResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	formatDir := filepath.Join(l.logDir, safeFilename(result.Format))
	if err := os.MkdirAll(formatDir, 0755); err != nil {
		return fmt.Errorf("failed to create format directory: %w", err)
	}

	path := filepath.Join(formatDir, safeFilename(result.Test)+".log")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create test log file: %w", err)
	}
	defer f.Close()

	header := fmt.Sprintf("Test:     %s\nFormat:   %s\nStatus:   %s\nExit:     %d\nDuration: %s\n\n",
		result.Test, result.Format, result.Status, result.ExitCode, formatDuration(result.Duration))
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("failed to write test log header: %w", err)
	}

	if result.Stdout != "" {
		if _, err := f.WriteString(stripansi.Strip(result.Stdout)); err != nil {
			return fmt.Errorf("failed to write test output: %w", err)
		}
		if !strings.HasSuffix(result.Stdout, "\n") {
			if _, err := f.WriteString("\n"); err != nil {
				return err
			}
		}
	}

	return nil
}

// LogSummary writes the run summary file.
func (l *FileLogger) LogSummary(summary string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.logDir, SummaryFilename)
	if err := os.WriteFile(path, []byte(stripansi.Strip(summary)), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// safeFilename converts a test identity into a usable file name. Path
// separators collapse into underscores; the identity string itself remains
// the unit of distinctness, so two tests differing only in separators may
// share a file name.
func safeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
	)
	name := replacer.Replace(s)
	name = strings.Trim(name, "._")
	if name == "" {
		name = "unnamed"
	}
	return name
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
