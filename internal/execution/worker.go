package execution

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ctr/internal/domain"
)

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	runner   TestRunner
	workers  int
	failFast bool
	progress Progress
	log      zerolog.Logger
}

var _ Executor = (*WorkerPool)(nil)

// NewWorkerPool creates a pool that keeps at most workers tests in flight
func NewWorkerPool(runner TestRunner, workers int, logger zerolog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		runner:  runner,
		workers: workers,
		log:     logger.With().Str("component", "worker-pool").Logger(),
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// SetFailFast stops dispatching new tests after the first failure. Tests
// already running are allowed to finish.
func (wp *WorkerPool) SetFailFast(failFast bool) {
	wp.failFast = failFast
}

type job struct {
	index int
	tc    domain.TestCase
}

type outcome struct {
	index  int
	result domain.ExecutionResult
}

// Execute runs cases in parallel, dispatching them in the given order. The
// returned results follow the same order. When ctx is cancelled no further
// tests are dispatched, running ones are killed and reported as cancelled,
// and ctx's error is returned along with the results gathered so far.
func (wp *WorkerPool) Execute(ctx context.Context, cases []domain.TestCase) ([]domain.ExecutionResult, time.Duration, error) {
	if len(cases) == 0 {
		return nil, 0, nil
	}

	startTime := time.Now()
	dispatch, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	// Unbuffered so nothing is queued ahead of a free worker
	queue := make(chan job)
	results := make(chan outcome, len(cases))

	go func() {
		defer close(queue)
		for i, tc := range cases {
			select {
			case <-dispatch.Done():
				wp.log.Debug().Int("dispatched", i).Msg("Dispatch stopped")
				return
			case queue <- job{index: i, tc: tc}:
			}
		}
	}()

	workerCount := min(wp.workers, len(cases))
	var (
		mu                        sync.Mutex
		completed, passed, failed int
		wg                        sync.WaitGroup
	)

	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range queue {
				// The feeder can lose the race against a stop signal
				if dispatch.Err() != nil {
					continue
				}
				result := wp.runner.Run(ctx, j.tc)
				wp.log.Debug().Int("worker", workerID).Str("test", j.tc.Name).Stringer("status", result.Status).Dur("duration", result.Duration).Msg("Test finished")
				results <- outcome{index: j.index, result: result}

				mu.Lock()
				completed++
				if result.Passed() {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(completed, passed, failed, result)
				}
				if wp.failFast && !result.Passed() && result.Status != domain.StatusCancelled {
					stopDispatch()
				}
				mu.Unlock()
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	slots := make([]*domain.ExecutionResult, len(cases))
	for o := range results {
		slots[o.index] = &o.result
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}

	ordered := make([]domain.ExecutionResult, 0, len(cases))
	for _, r := range slots {
		if r != nil {
			ordered = append(ordered, *r)
		}
	}

	duration := time.Since(startTime)
	if err := ctx.Err(); err != nil {
		wp.log.Debug().Int("finished", len(ordered)).Int("selected", len(cases)).Msg("Run cancelled")
		return ordered, duration, err
	}
	return ordered, duration, nil
}
