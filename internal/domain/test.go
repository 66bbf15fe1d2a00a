package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Framework identifies how a test executable lists and selects its tests
type Framework int

const (
	// Opaque treats the whole executable as a single test case
	Opaque Framework = iota
	// GoogleTest executables understand --gtest_list_tests and --gtest_filter
	GoogleTest
	// Catch2 executables understand --list-test-names-only and positional names
	Catch2
)

var frameworkNames = map[Framework]string{
	Opaque:     "opaque",
	GoogleTest: "gtest",
	Catch2:     "catch2",
}

// String returns the short name used in flags, config and JSON output
func (f Framework) String() string {
	if name, ok := frameworkNames[f]; ok {
		return name
	}
	return fmt.Sprintf("framework(%d)", int(f))
}

// ParseFramework parses a framework name such as "gtest" or "catch2"
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gtest", "googletest":
		return GoogleTest, nil
	case "catch2", "catch":
		return Catch2, nil
	case "opaque":
		return Opaque, nil
	}
	return Opaque, fmt.Errorf("unknown framework %q", s)
}

// MarshalJSON encodes the framework as its short name
func (f Framework) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// Executable is a candidate test binary found under the test root
type Executable struct {
	Path string `json:"path"` // Absolute path to the binary
	Name string `json:"name"` // Path relative to the test root, slash separated
}

// TestCase is the unit of selection and execution
type TestCase struct {
	Name       string     `json:"name"`       // Fully-qualified name (Suite.Test for gtest)
	Executable Executable `json:"executable"` // Binary that owns the test
	Framework  Framework  `json:"framework"`
	Args       []string   `json:"arguments"`      // Selection arguments followed by extra flags
	File       string     `json:"file,omitempty"` // Source file declaring the test, when the listing reports it
	Line       int        `json:"line,omitempty"`
}

// Key returns the identity of the test case: executable path and name
func (tc TestCase) Key() string {
	return tc.Executable.Path + "::" + tc.Name
}
