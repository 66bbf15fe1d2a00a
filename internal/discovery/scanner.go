package discovery

import (
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"ctr/internal/domain"
	"ctr/internal/process"
)

// Scanner scans for test executables in a directory
type Scanner struct {
	skipDirs map[string]bool
	excludes []string
	log      zerolog.Logger
}

// NewScanner creates a new Scanner. skipDirs are directory names never
// descended into; excludes are doublestar patterns matched against paths
// relative to the scan root.
func NewScanner(skipDirs, excludes []string, logger zerolog.Logger) (*Scanner, error) {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, domain.Configf("invalid exclude pattern %q", pattern)
		}
	}
	return &Scanner{
		skipDirs: skipMap,
		excludes: slices.Clone(excludes),
		log:      logger.With().Str("component", "scanner").Logger(),
	}, nil
}

// Scan returns the executables under root in lexical walk order. The
// sequence walks the tree lazily and can be consumed once.
func (s *Scanner) Scan(root string) (iter.Seq[domain.Executable], error) {
	root, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, domain.Configf("resolve test path %s: %w", root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.Configf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, domain.Configf("test path is not a directory: %s", root)
	}

	return func(yield func(domain.Executable) bool) {
		visited := make(map[string]bool)
		s.walk(root, root, visited, yield)
	}, nil
}

// walk returns false once yield asked to stop
func (s *Scanner) walk(root, dir string, visited map[string]bool, yield func(domain.Executable) bool) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("Skipping unresolvable directory")
		return true
	}
	if visited[resolved] {
		s.log.Debug().Str("dir", dir).Str("target", resolved).Msg("Directory already visited, skipping")
		return true
	}
	visited[resolved] = true

	// ReadDir returns the entries it managed to read along with the error
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable directory")
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel := relativeName(root, path)

		// Stat follows symlinks so linked binaries and directories are seen as their targets
		info, err := os.Stat(path)
		if err != nil {
			s.log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			continue
		}

		if info.IsDir() {
			if s.skipDirs[entry.Name()] || s.excluded(rel) {
				continue
			}
			if !s.walk(root, path, visited, yield) {
				return false
			}
			continue
		}

		if !info.Mode().IsRegular() || s.excluded(rel) || !process.IsExecutable(path) {
			continue
		}

		if !yield(domain.Executable{Path: path, Name: rel}) {
			return false
		}
	}
	return true
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// FromPaths validates an explicit list of executables. Display names are the
// paths as given.
func (s *Scanner) FromPaths(paths []string) (iter.Seq[domain.Executable], error) {
	executables := make([]domain.Executable, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, domain.Configf("resolve executable %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, domain.Configf("executable %s: %w", p, err)
		}
		if !info.Mode().IsRegular() || !process.IsExecutable(abs) {
			return nil, domain.Configf("%s is not an executable file", p)
		}
		executables = append(executables, domain.Executable{Path: abs, Name: filepath.ToSlash(p)})
	}
	return slices.Values(executables), nil
}

// relativeName returns path relative to root with forward slashes
func relativeName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
