package config

import (
	"errors"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"ctr/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Discovery settings
	TestDir         string
	NoParent        bool
	Executables     []string
	PathsToIgnore   []string
	ExcludeGlobs    []string
	ExecutablesOnly bool
	ProbeTimeout    time.Duration
	ProbeOrder      []domain.Framework
	ProbeLocations  bool // Ask listings for the source file and line of each test

	// Framework settings
	GTest  GTestConfig
	Catch2 Catch2Config

	// Selection settings
	Filter      string
	Interactive bool

	// Execution settings
	Jobs           int
	Timeout        time.Duration
	MaxOutputBytes int
	FailFast       bool

	// Output settings
	Color    string
	LogLevel string

	// Command flags
	Flags Flags

	// testDirSet records that TestDir came from the file, environment or a flag
	testDirSet bool
}

// GTestConfig holds the flags passed to GoogleTest executables
type GTestConfig struct {
	ListArgs    []string
	FilterFlag  string
	RunDisabled bool
	ExtraArgs   []string
}

// Catch2Config holds the flags passed to Catch2 executables
type Catch2Config struct {
	ListArgs  []string
	ExtraArgs []string
}

// Flags holds command-line flags. Only the names in Changed override
// values coming from the config file or the environment.
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

	Changed map[string]bool
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		TestDir:        DefaultTestDir,
		PathsToIgnore:  slices.Clone(DefaultPathsToIgnore),
		ExcludeGlobs:   slices.Clone(DefaultExcludeGlobs),
		ProbeTimeout:   DefaultProbeTimeout,
		ProbeOrder:     slices.Clone(DefaultProbeOrder),
		ProbeLocations: true,
		GTest: GTestConfig{
			ListArgs:    slices.Clone(DefaultGTestListArgs),
			FilterFlag:  DefaultGTestFilterFlag,
			RunDisabled: true,
		},
		Catch2: Catch2Config{
			ListArgs: slices.Clone(DefaultCatch2ListArgs),
		},
		Jobs:           DefaultJobs,
		Timeout:        DefaultTimeout,
		MaxOutputBytes: DefaultMaxOutputBytes,
		Color:          DefaultColor,
		LogLevel:       DefaultLogLevel,
	}
}

// ApplyFlags copies explicitly set command-line flags over the current values
func (c *Config) ApplyFlags(flags Flags) error {
	c.Flags = flags
	set := func(name string) bool { return flags.Changed[name] }

	if set("test-dir") {
		c.TestDir = flags.TestDir
		c.testDirSet = true
	}
	if set("executables") {
		c.Executables = flags.Executables
	}
	if set("no-parent") {
		c.NoParent = flags.NoParent
	}
	if set("jobs") {
		c.Jobs = flags.Jobs
	}
	if set("executables-only") {
		c.ExecutablesOnly = flags.ExecutablesOnly
	}
	if set("filter") {
		c.Filter = flags.Filter
	}
	if set("interactive") {
		c.Interactive = flags.Interactive
	}
	if set("gtest-extra-args") {
		c.GTest.ExtraArgs = NormalizeArgs(flags.GTestExtraArgs)
	}
	if set("catch2-extra-args") {
		c.Catch2.ExtraArgs = NormalizeArgs(flags.Catch2ExtraArgs)
	}
	if set("probe-timeout") {
		c.ProbeTimeout = flags.ProbeTimeout
	}
	if set("probe-order") {
		order, err := ParseProbeOrder(flags.ProbeOrder)
		if err != nil {
			return err
		}
		c.ProbeOrder = order
	}
	if set("log-level") {
		c.LogLevel = flags.LogLevel
	}
	if set("timeout") {
		c.Timeout = flags.Timeout
	}
	if set("fail-fast") {
		c.FailFast = flags.FailFast
	}
	if set("color") {
		c.Color = flags.Color
	}
	return nil
}

// Validate checks flag combinations and values that would otherwise fail mid-run
func (c *Config) Validate() error {
	if c.testDirSet && len(c.Executables) > 0 {
		return domain.Configf("test dir and executables are mutually exclusive")
	}
	if c.Jobs < 0 {
		return domain.Configf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Timeout < 0 || c.ProbeTimeout < 0 {
		return domain.Configf("timeouts must not be negative")
	}
	if c.Filter != "" {
		if _, err := regexp.Compile(c.Filter); err != nil {
			return domain.Configf("invalid filter %q: %w", c.Filter, err)
		}
	}
	switch c.Color {
	case "auto", "yes", "no":
	default:
		return domain.Configf("invalid color option %q (want auto, yes or no)", c.Color)
	}
	if len(c.ProbeOrder) == 0 {
		return domain.NewConfigurationError(errors.New("probe order must name at least one framework"))
	}
	return nil
}

// Workers returns the effective worker pool size
func (c *Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}

// NormalizeArgs trims extra framework arguments and drops empty entries.
// Everything else reaches the executable verbatim, so a flag and its value
// may be given as two entries.
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			out = append(out, arg)
		}
	}
	return out
}

// ParseProbeOrder parses framework names into a probe precedence list
func ParseProbeOrder(names []string) ([]domain.Framework, error) {
	var order []domain.Framework
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fw, err := domain.ParseFramework(name)
		if err != nil || fw == domain.Opaque {
			return nil, domain.Configf("invalid probe order entry %q (want gtest or catch2)", name)
		}
		if slices.Contains(order, fw) {
			continue
		}
		order = append(order, fw)
	}
	if len(order) == 0 {
		return nil, domain.Configf("probe order must name at least one framework")
	}
	return order, nil
}

// ProbeOrderString renders the probe order the way --probe-order accepts it
func ProbeOrderString(order []domain.Framework) string {
	names := make([]string, len(order))
	for i, fw := range order {
		names[i] = fw.String()
	}
	return strings.Join(names, ",")
}
