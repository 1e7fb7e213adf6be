// Package exitcodes defines the standard exit codes used by op-matrix.
package exitcodes

// Exit code constants used by op-matrix
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when no test in the matrix failed
// * TestFailure (1): Used when one or more tests fail
// * RuntimeErr (2): Used for runtime errors such as panics or configuration failures
//
// Test programs speak the same protocol back to the orchestrator: exit 0 is a
// pass, exit NoResult (2) means the test could not reach a verdict under the
// current format, and any other nonzero exit is a failure. No-result tests are
// informational only and never make the orchestrator itself exit nonzero.
const (
	Success     = 0 // No test failures
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime errors

	NoResult = 2 // A test's "could not determine pass/fail" exit status
)
