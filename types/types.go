package types

import (
	"time"
)

// TestStatus represents the possible outcomes of a single test execution
type TestStatus string

const (
	TestStatusPass     TestStatus = "pass"
	TestStatusFail     TestStatus = "fail"
	TestStatusNoResult TestStatus = "no-result"
)

// TestResult captures the outcome of one test under one format
type TestResult struct {
	Test     string
	Format   string
	Status   TestStatus
	ExitCode int
	Duration time.Duration
	Stdout   string // Captured child output, when a capture sink was attached
}

// Format describes a named test-backend configuration. The format name is
// published into the TESTMATRIX_FORMAT environment slot before its test
// batch begins; Env lists additional variables published alongside it.
type Format struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"`
}

// MatrixConfig is the on-disk shape of a formats config file
type MatrixConfig struct {
	Formats []Format `yaml:"formats"`
}
