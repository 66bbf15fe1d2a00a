// Package launchjson renders test cases as VS Code debugger launch
// configurations.
package launchjson

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"ctr/internal/domain"
)

const fileVersion = "0.2.0"

// CwdRelativeTo selects what Options.Cwd is resolved against
type CwdRelativeTo string

const (
	RelativeToExecutable CwdRelativeTo = "executable"
	RelativeToCppFile    CwdRelativeTo = "cpp-file"
	RelativeToNone       CwdRelativeTo = "none"
)

// ParseCwdRelativeTo parses a --launch-cwd-relative-to value
func ParseCwdRelativeTo(s string) (CwdRelativeTo, error) {
	switch CwdRelativeTo(s) {
	case RelativeToExecutable, RelativeToCppFile, RelativeToNone:
		return CwdRelativeTo(s), nil
	}
	return "", domain.Configf("invalid cwd base %q (want executable, cpp-file or none)", s)
}

// Options controls the generated configurations
type Options struct {
	Type               string // Debugger type, cppdbg by default
	Request            string // launch or attach
	Cwd                string
	CwdRelativeTo      CwdRelativeTo
	AddExecPathToName  bool
	ConfigurationsOnly bool // Emit the configurations array without the wrapper object
	StopAtEntry        bool
	PrettyPrinting     bool // Add the gdb pretty-printing setup command
}

// DefaultOptions returns the options used when no flag is given
func DefaultOptions() Options {
	return Options{
		Type:          "cppdbg",
		Request:       "launch",
		Cwd:           ".",
		CwdRelativeTo: RelativeToExecutable,
	}
}

type launchFile struct {
	Version        string          `json:"version"`
	Configurations []configuration `json:"configurations"`
}

type setupCommand struct {
	Text           string `json:"text"`
	Description    string `json:"description"`
	IgnoreFailures bool   `json:"ignoreFailures"`
}

type configuration struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Request       string         `json:"request"`
	Program       string         `json:"program"`
	Args          []string       `json:"args"`
	Cwd           string         `json:"cwd"`
	StopAtEntry   bool           `json:"stopAtEntry,omitempty"`
	SetupCommands []setupCommand `json:"setupCommands,omitempty"`
}

// Render returns the indented launch.json document for cases, one
// configuration per test case in the order given.
func Render(cases []domain.TestCase, opts Options) ([]byte, error) {
	configs := make([]configuration, 0, len(cases))
	for _, tc := range cases {
		c, err := newConfiguration(tc, opts)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}

	var doc any = launchFile{Version: fileVersion, Configurations: configs}
	if opts.ConfigurationsOnly {
		doc = configs
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal launch configurations: %w", err)
	}
	return data, nil
}

func newConfiguration(tc domain.TestCase, opts Options) (configuration, error) {
	name := tc.Name
	if opts.AddExecPathToName {
		name = tc.Name + ":" + tc.Executable.Path
	}

	cwd, err := resolveCwd(tc, opts)
	if err != nil {
		return configuration{}, err
	}

	args := tc.Args
	if args == nil {
		args = []string{}
	}

	c := configuration{
		Name:        name,
		Type:        opts.Type,
		Request:     opts.Request,
		Program:     tc.Executable.Path,
		Args:        args,
		Cwd:         cwd,
		StopAtEntry: opts.StopAtEntry,
	}
	if opts.PrettyPrinting {
		c.SetupCommands = []setupCommand{{
			Text:        "-enable-pretty-printing",
			Description: "Enable pretty printing",
		}}
	}
	return c, nil
}

// resolveCwd returns an absolute, symlink-free cwd. A directory that does not
// exist yet is returned cleaned but unresolved.
func resolveCwd(tc domain.TestCase, opts Options) (string, error) {
	cwd := opts.Cwd
	if cwd == "" {
		cwd = "."
	}
	if !filepath.IsAbs(cwd) {
		switch opts.CwdRelativeTo {
		case RelativeToExecutable:
			cwd = filepath.Join(filepath.Dir(tc.Executable.Path), cwd)
		case RelativeToCppFile:
			// Tests without a known source file use the executable's directory
			base := tc.Executable.Path
			if tc.File != "" {
				base = tc.File
			}
			cwd = filepath.Join(filepath.Dir(base), cwd)
		}
	}

	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("resolve launch cwd %s: %w", cwd, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
