package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-matrix/types"
)

func TestNewFileLogger(t *testing.T) {
	base := t.TempDir()

	l, err := NewFileLogger(base, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", l.GetRunID())
	assert.DirExists(t, filepath.Join(base, RunDirectoryPrefix+"run-1"))

	_, err = NewFileLogger(base, "")
	require.Error(t, err, "runID is required")
}

func TestLogTestResult(t *testing.T) {
	base := t.TempDir()
	l, err := NewFileLogger(base, "run-1")
	require.NoError(t, err)

	result := &types.TestResult{
		Test:     "test/sub/check.sh",
		Format:   "make",
		Status:   types.TestStatusFail,
		ExitCode: 1,
		Duration: 1500 * time.Millisecond,
		Stdout:   "\x1b[31msome red failure text\x1b[0m\n",
	}
	require.NoError(t, l.LogTestResult(result))

	path := filepath.Join(l.GetLogDir(), "make", "test_sub_check.sh.log")
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "Test:     test/sub/check.sh")
	assert.Contains(t, string(content), "Status:   fail")
	assert.Contains(t, string(content), "Exit:     1")
	assert.Contains(t, string(content), "some red failure text")
	assert.NotContains(t, string(content), "\x1b[31m", "ANSI escapes are stripped")
}

func TestLogTestResultNoOutput(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run-1")
	require.NoError(t, err)

	require.NoError(t, l.LogTestResult(&types.TestResult{
		Test:   "t1",
		Format: "ninja",
		Status: types.TestStatusPass,
	}))
	assert.FileExists(t, filepath.Join(l.GetLogDir(), "ninja", "t1.log"))
}

func TestLogSummary(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run-1")
	require.NoError(t, err)

	require.NoError(t, l.LogSummary("Failed the following test:\n\tt2\n"))

	content, err := os.ReadFile(filepath.Join(l.GetLogDir(), SummaryFilename))
	require.NoError(t, err)
	assert.Contains(t, string(content), "t2")
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"plain", "plain"},
		{"a/b/c", "a_b_c"},
		{"spaces here", "spaces_here"},
		{"./leading", "leading"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, safeFilename(tt.in), "input %q", tt.in)
	}
}
