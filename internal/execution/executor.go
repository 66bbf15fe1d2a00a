package execution

import (
	"context"
	"time"

	"ctr/internal/domain"
)

// Executor executes test cases and returns results in the order given
type Executor interface {
	Execute(ctx context.Context, cases []domain.TestCase) ([]domain.ExecutionResult, time.Duration, error)
}

// TestRunner runs a single test case to completion
type TestRunner interface {
	Run(ctx context.Context, tc domain.TestCase) domain.ExecutionResult
}

// Progress is notified once per finished test. Calls are serialized.
type Progress interface {
	Update(completed, passed, failed int, result domain.ExecutionResult)
	Finish()
}
