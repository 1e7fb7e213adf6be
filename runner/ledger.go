package runner

import (
	"time"

	"github.com/ethereum-optimism/infra/op-matrix/exitcodes"
	"github.com/ethereum-optimism/infra/op-matrix/types"
)

// Entry records one (test, format) execution in the order it ran.
type Entry struct {
	Test     string
	Format   string
	ExitCode int
	Duration time.Duration
}

// Ledger accumulates test identities into three outcome buckets. Entries are
// appended in execution order across all formats and are never deduplicated;
// a test recurs once per format it ran under.
type Ledger struct {
	Passed   []Entry
	Failed   []Entry
	NoResult []Entry
}

// ClassifyExitCode maps a test's exit status to its outcome bucket: 0 is a
// pass, the reserved exit code 2 means the test could not determine a
// verdict, and any other nonzero exit is a failure.
func ClassifyExitCode(code int) types.TestStatus {
	switch {
	case code == exitcodes.NoResult:
		return types.TestStatusNoResult
	case code != 0:
		return types.TestStatusFail
	default:
		return types.TestStatusPass
	}
}

// Record files the entry into exactly one bucket based on its exit code and
// returns the bucket it landed in.
func (l *Ledger) Record(e Entry) types.TestStatus {
	status := ClassifyExitCode(e.ExitCode)
	switch status {
	case types.TestStatusNoResult:
		l.NoResult = append(l.NoResult, e)
	case types.TestStatusFail:
		l.Failed = append(l.Failed, e)
	default:
		l.Passed = append(l.Passed, e)
	}
	return status
}

// Total returns the number of entries across all three buckets.
func (l *Ledger) Total() int {
	return len(l.Passed) + len(l.Failed) + len(l.NoResult)
}
