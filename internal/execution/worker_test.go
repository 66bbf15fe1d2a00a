package execution

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctr/internal/domain"
)

// fakeRunner records concurrency and returns statuses chosen per test name
type fakeRunner struct {
	delay    func(name string) time.Duration
	status   func(name string) domain.Status
	inFlight atomic.Int32
	peak     atomic.Int32
	ran      sync.Map
}

func (f *fakeRunner) Run(ctx context.Context, tc domain.TestCase) domain.ExecutionResult {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.ran.Store(tc.Name, true)

	var d time.Duration
	if f.delay != nil {
		d = f.delay(tc.Name)
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return domain.ExecutionResult{TestCase: tc, Status: domain.StatusCancelled, ExitCode: -1}
	}

	status := domain.StatusPassed
	if f.status != nil {
		status = f.status(tc.Name)
	}
	return domain.ExecutionResult{TestCase: tc, Status: status}
}

// recordingProgress collects progress updates
type recordingProgress struct {
	updates  []int
	finished bool
	passed   int
	failed   int
}

func (p *recordingProgress) Update(completed, passed, failed int, _ domain.ExecutionResult) {
	p.updates = append(p.updates, completed)
	p.passed, p.failed = passed, failed
}

func (p *recordingProgress) Finish() { p.finished = true }

func makeCases(n int) []domain.TestCase {
	cases := make([]domain.TestCase, n)
	for i := range cases {
		cases[i] = domain.TestCase{Name: fmt.Sprintf("Suite.Test%02d", i)}
	}
	return cases
}

func resultNames(results []domain.ExecutionResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.TestCase.Name
	}
	return names
}

func TestWorkerPool_Execute(t *testing.T) {
	runner := &fakeRunner{
		delay: func(name string) time.Duration { return time.Duration(len(name)%3) * 5 * time.Millisecond },
		status: func(name string) domain.Status {
			if name == "Suite.Test03" {
				return domain.StatusFailed
			}
			return domain.StatusPassed
		},
	}
	progress := &recordingProgress{}
	pool := NewWorkerPool(runner, 3, zerolog.Nop())
	pool.SetProgress(progress)

	cases := makeCases(20)
	results, duration, err := pool.Execute(context.Background(), cases)

	require.NoError(t, err)
	assert.Positive(t, duration)
	require.Len(t, results, 20)
	assert.Equal(t, resultNames(results), func() []string {
		names := make([]string, len(cases))
		for i, tc := range cases {
			names[i] = tc.Name
		}
		return names
	}())
	assert.LessOrEqual(t, runner.peak.Load(), int32(3))

	// One failing test does not affect the others
	summary := domain.Summarize(results, duration)
	assert.Equal(t, 19, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.StatusFailed, results[3].Status)

	assert.Len(t, progress.updates, 20)
	assert.Equal(t, 19, progress.passed)
	assert.Equal(t, 1, progress.failed)
	assert.True(t, progress.finished)
}

func TestWorkerPool_Execute_MaxInFlight(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			runner := &fakeRunner{delay: func(string) time.Duration { return 10 * time.Millisecond }}
			results, _, err := NewWorkerPool(runner, workers, zerolog.Nop()).Execute(context.Background(), makeCases(16))
			require.NoError(t, err)
			assert.Len(t, results, 16)
			assert.LessOrEqual(t, runner.peak.Load(), int32(workers))
		})
	}
}

func TestWorkerPool_Execute_Empty(t *testing.T) {
	results, duration, err := NewWorkerPool(&fakeRunner{}, 4, zerolog.Nop()).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, duration)
}

func TestWorkerPool_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{delay: func(string) time.Duration { return time.Second }}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	results, _, err := NewWorkerPool(runner, 2, zerolog.Nop()).Execute(ctx, makeCases(10))

	require.ErrorIs(t, err, context.Canceled)
	// Only the two in-flight tests report, both cancelled
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.StatusCancelled, r.Status)
	}
	_, ranLast := runner.ran.Load("Suite.Test09")
	assert.False(t, ranLast)
}

func TestWorkerPool_Execute_FailFast(t *testing.T) {
	runner := &fakeRunner{
		delay: func(string) time.Duration { return 5 * time.Millisecond },
		status: func(name string) domain.Status {
			if name == "Suite.Test00" {
				return domain.StatusFailed
			}
			return domain.StatusPassed
		},
	}
	pool := NewWorkerPool(runner, 1, zerolog.Nop())
	pool.SetFailFast(true)

	results, _, err := pool.Execute(context.Background(), makeCases(10))

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Less(t, len(results), 10)
	assert.Equal(t, domain.StatusFailed, results[0].Status)
}
