// Package exitcodes defines the process exit codes used by ctr.
package exitcodes

const (
	Success     = 0   // All selected tests passed, or nothing to run
	TestFailure = 1   // At least one test failed, timed out or crashed
	RuntimeErr  = 2   // Configuration or infrastructure error
	Interrupted = 130 // Run cancelled by SIGINT/SIGTERM
)
