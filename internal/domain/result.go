package domain

import (
	"encoding/json"
	"time"
)

// Status classifies how a single test case execution ended
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusTimeout
	StatusCrashed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	case StatusCrashed:
		return "crashed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// MarshalJSON encodes the status as its name
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ExecutionResult represents the result of executing one test case
type ExecutionResult struct {
	TestCase TestCase      // Test case that was executed
	Status   Status        // How the process ended
	ExitCode int           // Process exit code, -1 if it never exited normally
	Output   []byte        // Combined stdout and stderr (tail if truncated)
	Error    string        // Spawn or timeout description, empty on a normal exit
	Duration time.Duration // Wall-clock time from dispatch to exit
}

// Passed reports whether the test case succeeded
func (r ExecutionResult) Passed() bool {
	return r.Status == StatusPassed
}

// RunSummary aggregates the results of a run
type RunSummary struct {
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
	Failures []ExecutionResult // Failed results in selection order
}

// Success reports whether the run should exit successfully
func (s RunSummary) Success() bool {
	return s.Failed == 0
}

// Summarize reduces ordered results into a RunSummary.
func Summarize(results []ExecutionResult, duration time.Duration) RunSummary {
	summary := RunSummary{Total: len(results), Duration: duration}
	for _, r := range results {
		if r.Passed() {
			summary.Passed++
			continue
		}
		summary.Failures = append(summary.Failures, r)
	}
	summary.Failed = summary.Total - summary.Passed
	return summary
}
