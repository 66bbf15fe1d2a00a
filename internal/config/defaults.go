package config

import (
	"time"

	"ctr/internal/domain"
)

const (
	// DefaultTestDir is where test discovery starts
	DefaultTestDir = "."
	// DefaultConfigFile is read from the working directory when --config is not given
	DefaultConfigFile = ".ctr.yaml"
	// DefaultEnvFile is read from the working directory for CTR_* overrides
	DefaultEnvFile = ".env"
	// DefaultJobs of zero means one worker per CPU
	DefaultJobs = 0
	// DefaultTimeout bounds a single test case execution
	DefaultTimeout = 5 * time.Minute
	// DefaultProbeTimeout bounds a single listing invocation
	DefaultProbeTimeout = 10 * time.Second
	// DefaultMaxOutputBytes is how much output is kept per test case
	DefaultMaxOutputBytes = 5 * 1024 * 1024
	// DefaultColor controls colored run output
	DefaultColor = "auto"
	// DefaultLogLevel only shows discovery warnings and errors
	DefaultLogLevel = "warn"

	DefaultGTestFilterFlag = "--gtest_filter"
)

// DefaultPathsToIgnore are directory names never descended into
var DefaultPathsToIgnore = []string{
	".git",
	".hg",
	".svn",
	".cache",
	"CMakeFiles",
	"_deps",
	"node_modules",
}

// DefaultExcludeGlobs are doublestar patterns, relative to the test root, for executable files that are not tests
var DefaultExcludeGlobs = []string{
	"**/*.so",
	"**/*.so.*",
	"**/*.dylib",
	"**/*.dll",
}

// DefaultGTestListArgs lists gtest cases without running them
var DefaultGTestListArgs = []string{"--gtest_list_tests"}

// DefaultCatch2ListArgs lists Catch2 case names without running them
var DefaultCatch2ListArgs = []string{"--list-test-names-only"}

// DefaultProbeOrder is tried first to last; the first framework that lists tests wins
var DefaultProbeOrder = []domain.Framework{domain.GoogleTest, domain.Catch2}
