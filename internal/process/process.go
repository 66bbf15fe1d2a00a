// Package process starts test executables in their own process group so a
// timeout or interrupt can take down the whole tree, and classifies how
// they exited.
package process

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait keeps reading output after the process was
// killed, in case a grandchild still holds the pipes open.
const waitDelay = 2 * time.Second

// Command builds an exec.Cmd bound to ctx. When ctx is done the whole
// process group is killed.
func Command(ctx context.Context, dir, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	configureGroup(cmd)
	cmd.Cancel = func() error {
		return killGroup(cmd)
	}
	return cmd
}

// Exit describes how a finished process ended
type Exit struct {
	Code     int  // Exit code, -1 when killed by a signal or never started
	Signaled bool // Terminated by a signal (crash or kill)
	Started  bool // False when the process could not be spawned
}

// Classify inspects the error returned by cmd.Run or cmd.Wait
func Classify(err error) Exit {
	if err == nil {
		return Exit{Code: 0, Started: true}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return Exit{Code: code, Signaled: code == -1 || signaled(exitErr), Started: true}
	}
	return Exit{Code: -1}
}
