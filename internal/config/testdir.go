package config

import (
	"fmt"
	"os"
	"path/filepath"

	"ctr/internal/domain"
)

// FindTestDir resolves the test root. A relative path is tried against the
// working directory and then each of its parents, unless noParent is set.
// The returned path is absolute with symlinks resolved.
func FindTestDir(path string, noParent bool) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return findTestDirFrom(cwd, path, noParent)
}

func findTestDirFrom(start, path string, noParent bool) (string, error) {
	if path == "" {
		path = DefaultTestDir
	}

	current := start
	for {
		candidate := path
		if !filepath.IsAbs(path) {
			candidate = filepath.Join(current, path)
		}

		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			resolved, err := filepath.EvalSymlinks(candidate)
			if err != nil {
				return "", fmt.Errorf("resolve test dir %s: %w", candidate, err)
			}
			return filepath.Abs(resolved)
		}

		if noParent || filepath.IsAbs(path) {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", domain.Configf("test dir %s not found", path)
}
