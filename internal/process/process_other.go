//go:build !unix

package process

import (
	"os/exec"
	"path/filepath"
	"strings"
)

func configureGroup(cmd *exec.Cmd) {}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func signaled(exitErr *exec.ExitError) bool {
	return false
}

// IsExecutable reports whether path looks like a Windows executable
func IsExecutable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".exe")
}
