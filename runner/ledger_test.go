package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-matrix/types"
)

func TestClassifyExitCode(t *testing.T) {
	tests := []struct {
		code     int
		expected types.TestStatus
	}{
		{0, types.TestStatusPass},
		{1, types.TestStatusFail},
		{2, types.TestStatusNoResult},
		{3, types.TestStatusFail},
		{17, types.TestStatusFail},
		{255, types.TestStatusFail},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyExitCode(tt.code), "exit code %d", tt.code)
	}
}

func TestLedgerRecord(t *testing.T) {
	var l Ledger

	l.Record(Entry{Test: "t1", Format: "make", ExitCode: 0})
	l.Record(Entry{Test: "t2", Format: "make", ExitCode: 1})
	l.Record(Entry{Test: "t3", Format: "make", ExitCode: 2})
	l.Record(Entry{Test: "t1", Format: "ninja", ExitCode: 0})

	assert.Len(t, l.Passed, 2)
	assert.Len(t, l.Failed, 1)
	assert.Len(t, l.NoResult, 1)
	assert.Equal(t, 4, l.Total(), "every execution lands in exactly one bucket")

	// Entries keep execution order and are not deduplicated
	assert.Equal(t, "t1", l.Passed[0].Test)
	assert.Equal(t, "make", l.Passed[0].Format)
	assert.Equal(t, "t1", l.Passed[1].Test)
	assert.Equal(t, "ninja", l.Passed[1].Format)
}
