package execution

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"ctr/internal/domain"
	"ctr/internal/process"
)

const defaultMaxOutputBytes = 5 * 1024 * 1024

// ExecOptions controls how a single test process is run
type ExecOptions struct {
	Timeout        time.Duration // Per-test wall clock limit, zero for none
	MaxOutputBytes int           // Tail of combined output kept per test
}

// Runner executes a single test case as a sub-process
type Runner struct {
	opts ExecOptions
	log  zerolog.Logger
}

var _ TestRunner = (*Runner)(nil)

// NewRunner creates a new Runner
func NewRunner(opts ExecOptions, logger zerolog.Logger) *Runner {
	return &Runner{
		opts: opts,
		log:  logger.With().Str("component", "runner").Logger(),
	}
}

// Run executes the test case's executable with its selection arguments from
// the executable's own directory and classifies how it ended.
func (r *Runner) Run(ctx context.Context, tc domain.TestCase) domain.ExecutionResult {
	runCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	output := newTailBuffer(r.opts.MaxOutputBytes)
	cmd := process.Command(runCtx, filepath.Dir(tc.Executable.Path), tc.Executable.Path, tc.Args...)
	cmd.Stdout = output
	cmd.Stderr = output

	r.log.Debug().Str("test", tc.Name).Str("executable", tc.Executable.Name).Strs("args", tc.Args).Msg("Dispatching test")

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	// The process exited cleanly but a grandchild kept the output pipes open
	if errors.Is(err, exec.ErrWaitDelay) {
		r.log.Debug().Str("test", tc.Name).Msg("Output pipes held open after exit")
		err = nil
	}

	result := domain.ExecutionResult{
		TestCase: tc,
		Output:   output.Bytes(),
		Duration: duration,
	}
	exit := process.Classify(err)
	result.ExitCode = exit.Code
	result.Status, result.Error = r.classify(tc, err, exit, ctx.Err() != nil, errors.Is(runCtx.Err(), context.DeadlineExceeded))
	if result.Status == domain.StatusCancelled || result.Status == domain.StatusTimeout {
		result.ExitCode = -1
	}

	if output.Truncated() {
		r.log.Debug().Str("test", tc.Name).Int("kept_bytes", len(result.Output)).Msg("Output truncated to tail")
	}
	return result
}

// classify maps how the process ended to a status. A process that exited on
// its own keeps its exit status even when cancellation arrived right after.
func (r *Runner) classify(tc domain.TestCase, err error, exit process.Exit, cancelled, timedOut bool) (domain.Status, string) {
	switch {
	case err != nil && cancelled:
		return domain.StatusCancelled, "cancelled"
	case err != nil && timedOut:
		return domain.StatusTimeout, fmt.Sprintf("timed out after %s", r.opts.Timeout)
	case !exit.Started:
		return domain.StatusFailed, fmt.Sprintf("failed to start %s: %v", tc.Executable.Path, err)
	case exit.Signaled:
		return domain.StatusCrashed, fmt.Sprintf("terminated by signal: %v", err)
	case exit.Code != 0:
		return domain.StatusFailed, ""
	}
	return domain.StatusPassed, ""
}
