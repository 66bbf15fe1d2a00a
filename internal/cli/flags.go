package cli

import (
	"time"

	"github.com/spf13/pflag"

	"ctr/internal/config"
	"ctr/internal/launchjson"
)

// Flags holds command-line flags
type Flags struct {
	ConfigPath      string
	TestDir         string
	Executables     []string
	NoParent        bool
	Jobs            int
	ExecutablesOnly bool
	Filter          string
	Interactive     bool
	GTestExtraArgs  []string
	Catch2ExtraArgs []string
	ProbeTimeout    time.Duration
	ProbeOrder      []string
	LogLevel        string

	// run
	Timeout      time.Duration
	FailFast     bool
	Color        string
	Report       string
	OpenFailures bool
	NoProgress   bool

	// list
	Output string

	// launch-json
	Launch LaunchFlags
}

// LaunchFlags holds the launch-json flags
type LaunchFlags struct {
	Type               string
	Request            string
	Cwd                string
	CwdRelativeTo      string
	AddExecPathToName  bool
	ConfigurationsOnly bool
	StopAtEntry        bool
	PrettyPrinting     bool
}

// AddCommonFlags registers the discovery and selection flags shared by every command
func (f *Flags) AddCommonFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to a YAML config file (default .ctr.yaml when present)")
	fs.StringVar(&f.TestDir, "test-dir", config.DefaultTestDir, "Directory to search for test executables, looked up in parent directories too")
	fs.StringSliceVar(&f.Executables, "executables", nil, "Explicit list of test executables, instead of searching --test-dir")
	fs.BoolVar(&f.NoParent, "no-parent", false, "Do not look for --test-dir in parent directories")
	fs.IntVarP(&f.Jobs, "jobs", "j", config.DefaultJobs, "Number of parallel jobs (0 = number of CPUs)")
	fs.BoolVar(&f.ExecutablesOnly, "executables-only", false, "Treat every executable as a single test instead of listing its tests")
	fs.StringVarP(&f.Filter, "filter", "f", "", "Regular expression matched against fully-qualified test names")
	fs.BoolVarP(&f.Interactive, "interactive", "i", false, "Pick tests interactively with a fuzzy finder")
	fs.StringSliceVar(&f.GTestExtraArgs, "gtest-extra-args", nil, "Extra arguments appended verbatim to GoogleTest runs (e.g. --gtest_shuffle)")
	fs.StringSliceVar(&f.Catch2ExtraArgs, "catch2-extra-args", nil, "Extra arguments appended verbatim to Catch2 runs")
	fs.DurationVar(&f.ProbeTimeout, "probe-timeout", config.DefaultProbeTimeout, "Time limit for listing the tests of one executable")
	fs.StringSliceVar(&f.ProbeOrder, "probe-order", []string{"gtest", "catch2"}, "Frameworks to try when listing tests, first match wins")
	fs.StringVar(&f.LogLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
}

// AddRunFlags registers the run command flags
func (f *Flags) AddRunFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&f.Timeout, "timeout", config.DefaultTimeout, "Time limit for a single test (0 = none)")
	fs.BoolVar(&f.FailFast, "fail-fast", false, "Stop starting new tests after the first failure")
	fs.StringVar(&f.Color, "color", config.DefaultColor, "Colored output: auto, yes or no")
	fs.StringVar(&f.Report, "report", "", "Write a JSON report of the run to this file")
	fs.BoolVar(&f.OpenFailures, "open-failures", false, "Browse failures in an interactive viewer when the run has any")
	fs.BoolVar(&f.NoProgress, "no-progress", false, "Print one line per test instead of a progress bar")
}

// AddListFlags registers the list command flags
func (f *Flags) AddListFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Output, "output", "o", "json", "Output format: plain, json, pretty-json or tree")
}

// AddLaunchFlags registers the launch-json command flags
func (f *Flags) AddLaunchFlags(fs *pflag.FlagSet) {
	def := launchjson.DefaultOptions()
	fs.StringVar(&f.Launch.Type, "launch-type", def.Type, "Debugger type of the launch configurations")
	fs.StringVar(&f.Launch.Request, "launch-request", def.Request, "Request type of the launch configurations")
	fs.StringVar(&f.Launch.Cwd, "launch-cwd", def.Cwd, "Working directory of the tests")
	fs.StringVar(&f.Launch.CwdRelativeTo, "launch-cwd-relative-to", string(def.CwdRelativeTo), "What --launch-cwd is relative to: executable, cpp-file or none")
	fs.BoolVar(&f.Launch.AddExecPathToName, "add-exec-path-to-name", false, "Append the executable path to each configuration name")
	fs.BoolVar(&f.Launch.ConfigurationsOnly, "configurations-only", false, "Print only the configurations array")
	fs.BoolVar(&f.Launch.StopAtEntry, "stop-at-entry", false, "Stop at the program entry point")
	fs.BoolVar(&f.Launch.PrettyPrinting, "pretty-printing", false, "Enable gdb pretty printing")
}

// LaunchOptions converts the launch-json flags
func (f *Flags) LaunchOptions() (launchjson.Options, error) {
	relativeTo, err := launchjson.ParseCwdRelativeTo(f.Launch.CwdRelativeTo)
	if err != nil {
		return launchjson.Options{}, err
	}
	return launchjson.Options{
		Type:               f.Launch.Type,
		Request:            f.Launch.Request,
		Cwd:                f.Launch.Cwd,
		CwdRelativeTo:      relativeTo,
		AddExecPathToName:  f.Launch.AddExecPathToName,
		ConfigurationsOnly: f.Launch.ConfigurationsOnly,
		StopAtEntry:        f.Launch.StopAtEntry,
		PrettyPrinting:     f.Launch.PrettyPrinting,
	}, nil
}

// Changed returns the names of the flags set on the command line
func Changed(fs *pflag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(fl *pflag.Flag) {
		changed[fl.Name] = true
	})
	return changed
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags(changed map[string]bool) config.Flags {
	return config.Flags{
		ConfigPath:      f.ConfigPath,
		TestDir:         f.TestDir,
		Executables:     f.Executables,
		NoParent:        f.NoParent,
		Jobs:            f.Jobs,
		ExecutablesOnly: f.ExecutablesOnly,
		Filter:          f.Filter,
		Interactive:     f.Interactive,
		GTestExtraArgs:  f.GTestExtraArgs,
		Catch2ExtraArgs: f.Catch2ExtraArgs,
		ProbeTimeout:    f.ProbeTimeout,
		ProbeOrder:      f.ProbeOrder,
		LogLevel:        f.LogLevel,
		Timeout:         f.Timeout,
		FailFast:        f.FailFast,
		Color:           f.Color,
		Report:          f.Report,
		OpenFailures:    f.OpenFailures,
		NoProgress:      f.NoProgress,
		Output:          f.Output,
		Changed:         changed,
	}
}
