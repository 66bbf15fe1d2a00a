//go:build unix

package execution

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctr/internal/domain"
)

func scriptCase(t *testing.T, body string, args ...string) domain.TestCase {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test_bin")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return domain.TestCase{
		Name:       "Suite.Case",
		Executable: domain.Executable{Path: path, Name: "test_bin"},
		Framework:  domain.GoogleTest,
		Args:       args,
	}
}

func TestRunner_Run(t *testing.T) {
	runner := NewRunner(ExecOptions{Timeout: 5 * time.Second}, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name       string
		body       string
		args       []string
		wantStatus domain.Status
		wantCode   int
		wantOutput string
	}{
		{
			name:       "passes",
			body:       "echo \"[ OK ] $1\"\nexit 0\n",
			args:       []string{"--gtest_filter=Suite.Case"},
			wantStatus: domain.StatusPassed,
			wantOutput: "[ OK ] --gtest_filter=Suite.Case",
		},
		{
			name:       "fails with stderr captured",
			body:       "echo 'unit.cpp:12: Failure' >&2\nexit 1\n",
			wantStatus: domain.StatusFailed,
			wantCode:   1,
			wantOutput: "unit.cpp:12: Failure",
		},
		{
			name:       "crashes",
			body:       "echo before\nkill -SEGV $$\n",
			wantStatus: domain.StatusCrashed,
			wantCode:   -1,
			wantOutput: "before",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runner.Run(ctx, scriptCase(t, tt.body, tt.args...))
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.Contains(t, string(result.Output), tt.wantOutput)
			assert.Equal(t, "Suite.Case", result.TestCase.Name)
		})
	}
}

func TestRunner_Run_WorkingDirectory(t *testing.T) {
	tc := scriptCase(t, "pwd -P\n")
	want, err := filepath.EvalSymlinks(filepath.Dir(tc.Executable.Path))
	require.NoError(t, err)

	result := NewRunner(ExecOptions{}, zerolog.Nop()).Run(context.Background(), tc)

	require.Equal(t, domain.StatusPassed, result.Status)
	assert.Equal(t, want, strings.TrimSpace(string(result.Output)))
}

func TestRunner_Run_Timeout(t *testing.T) {
	runner := NewRunner(ExecOptions{Timeout: 200 * time.Millisecond}, zerolog.Nop())
	tc := scriptCase(t, "echo started\nsleep 10 &\nwait\n")

	start := time.Now()
	result := runner.Run(context.Background(), tc)

	assert.Equal(t, domain.StatusTimeout, result.Status)
	assert.Equal(t, -1, result.ExitCode)
	assert.Contains(t, string(result.Output), "started")
	assert.Contains(t, result.Error, "timed out")
	assert.False(t, result.Passed())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRunner_Run_SpawnFailure(t *testing.T) {
	tc := domain.TestCase{
		Name:       "ghost",
		Executable: domain.Executable{Path: filepath.Join(t.TempDir(), "ghost"), Name: "ghost"},
	}

	result := NewRunner(ExecOptions{}, zerolog.Nop()).Run(context.Background(), tc)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, -1, result.ExitCode)
	assert.Contains(t, result.Error, "failed to start")
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tc := scriptCase(t, "sleep 10\n")

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	result := NewRunner(ExecOptions{}, zerolog.Nop()).Run(ctx, tc)

	assert.Equal(t, domain.StatusCancelled, result.Status)
}

func TestRunner_Run_OutputTail(t *testing.T) {
	runner := NewRunner(ExecOptions{MaxOutputBytes: 16}, zerolog.Nop())
	tc := scriptCase(t, "printf 'aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa'\nprintf 'the end'\nexit 1\n")

	result := runner.Run(context.Background(), tc)

	assert.Len(t, result.Output, 16)
	assert.True(t, strings.HasSuffix(string(result.Output), "the end"))
}
