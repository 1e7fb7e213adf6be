package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-matrix/runner"
	"github.com/ethereum-optimism/infra/op-matrix/types"
)

func sampleResult() *runner.MatrixResult {
	result := &runner.MatrixResult{
		RunID:    "run-1",
		Status:   types.TestStatusFail,
		Duration: 2500 * time.Millisecond,
		Ledger: runner.Ledger{
			Passed: []runner.Entry{
				{Test: "t1", Format: "fmtA"},
				{Test: "t1", Format: "fmtB"},
			},
			Failed: []runner.Entry{
				{Test: "t2", Format: "fmtA", ExitCode: 1},
			},
			NoResult: []runner.Entry{
				{Test: "t3", Format: "fmtA", ExitCode: 2},
			},
		},
		Results: []types.TestResult{
			{Test: "t1", Format: "fmtA", Status: types.TestStatusPass},
			{Test: "t2", Format: "fmtA", Status: types.TestStatusFail, ExitCode: 1},
			{Test: "t3", Format: "fmtA", Status: types.TestStatusNoResult, ExitCode: 2},
			{Test: "t1", Format: "fmtB", Status: types.TestStatusPass},
		},
		Stats: runner.ResultStats{Total: 4, Passed: 2, Failed: 1, NoResult: 1},
	}
	return result
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	WriteSummary(&out, sampleResult(), false)

	s := out.String()
	assert.NotContains(t, s, "Passed the following", "passed block is gated off by default")
	assert.Contains(t, s, "Failed the following test:\n\tt2\n")
	assert.Contains(t, s, "No result from the following test:\n\tt3\n")
}

func TestWriteSummaryReportPassed(t *testing.T) {
	var out bytes.Buffer
	WriteSummary(&out, sampleResult(), true)

	assert.Contains(t, out.String(), "Passed the following 2 tests:\n\tt1\n\tt1\n",
		"plural phrasing and one line per occurrence")
}

func TestWriteSummaryEmpty(t *testing.T) {
	var out bytes.Buffer
	WriteSummary(&out, &runner.MatrixResult{Status: types.TestStatusPass}, true)
	assert.Empty(t, out.String(), "empty ledgers produce no blocks")
}

func TestWriteTable(t *testing.T) {
	var out bytes.Buffer
	WriteTable(&out, sampleResult())

	s := out.String()
	assert.Contains(t, s, "Test Matrix Results")
	assert.Contains(t, s, "t1")
	assert.Contains(t, s, "t2")
	assert.Contains(t, s, "fmtA")
	assert.Contains(t, s, "TOTAL")
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "✓ pass", getResultString(types.TestStatusPass))
	assert.Equal(t, "✗ fail", getResultString(types.TestStatusFail))
	assert.Equal(t, "- no result", getResultString(types.TestStatusNoResult))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "0.0s", formatDuration(0))
}
