package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ctr/internal/config"
	"ctr/internal/domain"
	"ctr/internal/process"
)

const (
	gtestAlsoRunDisabled = "--gtest_also_run_disabled_tests"
	gtestOutputJSON      = "--gtest_output=json:"
)

// catch2JSONListArgs lists tests with their source locations (Catch2 v3)
var catch2JSONListArgs = []string{"--list-tests", "--reporter=JSON"}

// ProbeOptions controls how executables are introspected
type ProbeOptions struct {
	Disabled  bool // Treat every executable as a single opaque test
	Locations bool // Also ask for the source file and line of each test
	Timeout   time.Duration
	Order     []domain.Framework
	GTest     config.GTestConfig
	Catch2    config.Catch2Config
}

// Prober turns one executable into its test cases
type Prober interface {
	Probe(ctx context.Context, exe domain.Executable) []domain.TestCase
}

// ListedTest is one entry of a framework listing. File and Line are zero
// when the listing does not report a source location.
type ListedTest struct {
	Name string
	File string
	Line int
}

// listing is the outcome of one listing invocation
type listing struct {
	stdout   []byte
	exitCode int
}

// lister runs an executable with listing arguments. An error means the
// process could not be spawned or did not finish in time.
type lister func(ctx context.Context, exe domain.Executable, args []string) (listing, error)

// FrameworkProbe asks executables to list their tests, GoogleTest and Catch2 style
type FrameworkProbe struct {
	opts ProbeOptions
	list lister
	log  zerolog.Logger
}

var _ Prober = (*FrameworkProbe)(nil)

// NewFrameworkProbe creates a probe that spawns the executables it inspects
func NewFrameworkProbe(opts ProbeOptions, logger zerolog.Logger) *FrameworkProbe {
	p := &FrameworkProbe{
		opts: opts,
		log:  logger.With().Str("component", "probe").Logger(),
	}
	p.list = p.runListing
	return p
}

// Probe returns the test cases of exe in listing order. It never returns an
// empty slice: executables that cannot be introspected become one opaque case.
func (p *FrameworkProbe) Probe(ctx context.Context, exe domain.Executable) []domain.TestCase {
	if p.opts.Disabled {
		return []domain.TestCase{p.opaque(exe)}
	}

	for _, fw := range p.opts.Order {
		var (
			tests []ListedTest
			ok    bool
		)
		switch fw {
		case domain.GoogleTest:
			tests, ok = p.probeGTest(ctx, exe)
		case domain.Catch2:
			tests, ok = p.probeCatch2(ctx, exe)
		}
		if !ok {
			continue
		}

		p.log.Debug().Str("executable", exe.Name).Stringer("framework", fw).Int("tests", len(tests)).Msg("Listed tests")
		cases := make([]domain.TestCase, 0, len(tests))
		for _, lt := range tests {
			tc := p.testCase(exe, fw, lt.Name)
			if lt.File != "" {
				tc.File = resolveSourceFile(filepath.Dir(exe.Path), lt.File)
				if tc.File != "" {
					tc.Line = lt.Line
				}
			}
			cases = append(cases, tc)
		}
		return cases
	}

	p.log.Debug().Str("executable", exe.Name).Msg("No framework listing, treating executable as a single test")
	return []domain.TestCase{p.opaque(exe)}
}

func (p *FrameworkProbe) probeGTest(ctx context.Context, exe domain.Executable) ([]ListedTest, bool) {
	args := p.opts.GTest.ListArgs
	report := ""
	if p.opts.Locations {
		if f, err := os.CreateTemp("", "ctr-gtest-*.json"); err == nil {
			report = f.Name()
			f.Close()
			defer os.Remove(report)
			args = append(slices.Clone(args), gtestOutputJSON+report)
		}
	}

	out, err := p.list(ctx, exe, args)
	if err != nil || out.exitCode != 0 {
		return nil, false
	}
	names, ok := ParseGTestList(out.stdout)
	if !ok {
		return nil, false
	}

	tests := make([]ListedTest, len(names))
	for i, name := range names {
		tests[i] = ListedTest{Name: name}
	}
	if report == "" {
		return tests, true
	}

	// Older GoogleTest releases ignore --gtest_output while listing
	data, err := os.ReadFile(report)
	if err != nil || len(data) == 0 {
		return tests, true
	}
	located, err := ParseGTestJSON(data)
	if err != nil {
		p.log.Debug().Err(err).Str("executable", exe.Name).Msg("Ignoring unreadable GoogleTest JSON listing")
		return tests, true
	}
	byName := make(map[string]ListedTest, len(located))
	for _, lt := range located {
		byName[lt.Name] = lt
	}
	for i := range tests {
		if lt, ok := byName[tests[i].Name]; ok {
			tests[i] = lt
		}
	}
	return tests, true
}

func (p *FrameworkProbe) probeCatch2(ctx context.Context, exe domain.Executable) ([]ListedTest, bool) {
	if p.opts.Locations {
		if tests, ok := p.probeCatch2JSON(ctx, exe); ok {
			return tests, true
		}
	}

	out, err := p.list(ctx, exe, p.opts.Catch2.ListArgs)
	if err != nil {
		return nil, false
	}
	names := ParseCatch2List(out.stdout)
	if len(names) == 0 {
		return nil, false
	}
	// Catch2 v2 exits with the number of listed tests instead of zero
	if out.exitCode != 0 && out.exitCode != len(names)%256 {
		return nil, false
	}
	tests := make([]ListedTest, len(names))
	for i, name := range names {
		tests[i] = ListedTest{Name: name}
	}
	return tests, true
}

// probeCatch2JSON uses the JSON reporter listing, which Catch2 v2 lacks
func (p *FrameworkProbe) probeCatch2JSON(ctx context.Context, exe domain.Executable) ([]ListedTest, bool) {
	out, err := p.list(ctx, exe, catch2JSONListArgs)
	if err != nil || out.exitCode != 0 {
		return nil, false
	}
	tests, err := ParseCatch2JSON(out.stdout)
	if err != nil || len(tests) == 0 {
		return nil, false
	}
	return tests, true
}

// testCase builds the argument vector that selects exactly one test
func (p *FrameworkProbe) testCase(exe domain.Executable, fw domain.Framework, name string) domain.TestCase {
	var args []string
	switch fw {
	case domain.GoogleTest:
		args = append(args, p.opts.GTest.FilterFlag+"="+name)
		if p.opts.GTest.RunDisabled {
			args = append(args, gtestAlsoRunDisabled)
		}
		args = append(args, p.opts.GTest.ExtraArgs...)
	case domain.Catch2:
		args = append(args, EscapeCatch2Name(name))
		args = append(args, p.opts.Catch2.ExtraArgs...)
	}
	return domain.TestCase{Name: name, Executable: exe, Framework: fw, Args: args}
}

func (p *FrameworkProbe) opaque(exe domain.Executable) domain.TestCase {
	return domain.TestCase{Name: exe.Name, Executable: exe, Framework: domain.Opaque}
}

func (p *FrameworkProbe) runListing(ctx context.Context, exe domain.Executable, args []string) (listing, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	cmd := process.Command(ctx, filepath.Dir(exe.Path), exe.Path, slices.Clone(args)...)
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		p.log.Debug().Str("executable", exe.Name).Strs("args", args).Msg("Listing timed out")
		return listing{}, ctxErr
	}
	exit := process.Classify(err)
	if !exit.Started {
		return listing{}, err
	}
	return listing{stdout: stdout.Bytes(), exitCode: exit.Code}, nil
}

// ParseGTestList parses --gtest_list_tests output into Suite.Test names.
// Suite headers are unindented and end with '.', test names are indented,
// "# ..." annotations for typed and parameterized tests are dropped. Lines
// before the first header (such as gtest_main's banner) are ignored. The
// second result is false when the output does not follow the grammar or
// lists no tests.
func ParseGTestList(out []byte) ([]string, bool) {
	var (
		names []string
		suite string
	)

	for _, raw := range strings.Split(string(out), "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		text := stripListingComment(strings.TrimSpace(line))

		if !indented {
			if text == "" || !strings.HasSuffix(text, ".") || strings.ContainsAny(text, " \t") {
				if suite == "" {
					continue
				}
				return nil, false
			}
			suite = text
			continue
		}

		if suite == "" || text == "" || strings.ContainsAny(text, " \t") {
			return nil, false
		}
		names = append(names, suite+text)
	}

	return names, len(names) > 0
}

func stripListingComment(text string) string {
	if i := strings.Index(text, "#"); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}

// ParseGTestJSON parses the report written by --gtest_list_tests
// --gtest_output=json:<path> into Suite.Test names with source locations.
func ParseGTestJSON(data []byte) ([]ListedTest, error) {
	var report struct {
		TestSuites []struct {
			Name  string `json:"name"`
			Tests []struct {
				Name string `json:"name"`
				File string `json:"file"`
				Line int    `json:"line"`
			} `json:"testsuite"`
		} `json:"testsuites"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	var tests []ListedTest
	for _, suite := range report.TestSuites {
		for _, t := range suite.Tests {
			tests = append(tests, ListedTest{Name: suite.Name + "." + t.Name, File: t.File, Line: t.Line})
		}
	}
	return tests, nil
}

// ParseCatch2JSON parses --list-tests --reporter=JSON output. Anything
// printed before the JSON document is skipped.
func ParseCatch2JSON(out []byte) ([]ListedTest, error) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return nil, errors.New("no JSON document in listing")
	}

	var report struct {
		Listings struct {
			Tests []struct {
				Name           string `json:"name"`
				SourceLocation struct {
					Filename string `json:"filename"`
					Line     int    `json:"line"`
				} `json:"source-location"`
			} `json:"tests"`
		} `json:"listings"`
	}
	if err := json.NewDecoder(bytes.NewReader(out[start:])).Decode(&report); err != nil {
		return nil, err
	}

	tests := make([]ListedTest, 0, len(report.Listings.Tests))
	for _, t := range report.Listings.Tests {
		tests = append(tests, ListedTest{Name: t.Name, File: t.SourceLocation.Filename, Line: t.SourceLocation.Line})
	}
	return tests, nil
}

// resolveSourceFile returns the absolute, symlink-free path of a source file
// reported by a listing. Relative paths are looked up from dir and then each
// of its parents. An empty string means the file was not found.
func resolveSourceFile(dir, file string) string {
	if filepath.IsAbs(file) {
		if resolved, err := filepath.EvalSymlinks(file); err == nil {
			return resolved
		}
		return ""
	}

	for current := dir; ; {
		candidate := filepath.Join(current, file)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
				return resolved
			}
			return ""
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// ParseCatch2List parses --list-test-names-only output: one name per non-empty line
func ParseCatch2List(out []byte) []string {
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// EscapeCatch2Name escapes characters Catch2 treats as test spec syntax so a
// name passed on the command line matches exactly that test.
func EscapeCatch2Name(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '\\' || r == ',' || r == '[' || r == ']' || r == '"':
			b.WriteByte('\\')
		case i == 0 && (r == '~' || r == '*'):
			b.WriteByte('\\')
		case r == '*' && i == len(name)-1:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
