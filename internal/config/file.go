package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ctr/internal/domain"
)

// fileConfig mirrors the YAML config file. Pointer fields distinguish
// "not set" from zero values.
type fileConfig struct {
	TestDir         *string        `yaml:"test_dir"`
	NoParent        *bool          `yaml:"no_parent"`
	Executables     []string       `yaml:"executables"`
	PathsToIgnore   []string       `yaml:"paths_to_ignore"`
	ExcludeGlobs    []string       `yaml:"exclude"`
	ExecutablesOnly *bool          `yaml:"executables_only"`
	ProbeTimeout    *time.Duration `yaml:"probe_timeout"`
	ProbeOrder      []string       `yaml:"probe_order"`
	ProbeLocations  *bool          `yaml:"probe_locations"`
	Filter          *string        `yaml:"filter"`
	Jobs            *int           `yaml:"jobs"`
	Timeout         *time.Duration `yaml:"timeout"`
	MaxOutputBytes  *int           `yaml:"max_output_bytes"`
	FailFast        *bool          `yaml:"fail_fast"`
	Color           *string        `yaml:"color"`
	LogLevel        *string        `yaml:"log_level"`

	GTest struct {
		ListArgs    []string `yaml:"list_args"`
		FilterFlag  *string  `yaml:"filter_flag"`
		RunDisabled *bool    `yaml:"run_disabled"`
		ExtraArgs   []string `yaml:"extra_args"`
	} `yaml:"gtest"`

	Catch2 struct {
		ListArgs  []string `yaml:"list_args"`
		ExtraArgs []string `yaml:"extra_args"`
	} `yaml:"catch2"`
}

// LoadFile applies a YAML config file. An empty path falls back to
// DefaultConfigFile, which may be absent.
func (c *Config) LoadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return domain.Configf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return domain.Configf("parse config file %s: %w", path, err)
	}
	return c.applyFile(fc)
}

func (c *Config) applyFile(fc fileConfig) error {
	if fc.TestDir != nil {
		c.TestDir = *fc.TestDir
		c.testDirSet = true
	}
	if fc.NoParent != nil {
		c.NoParent = *fc.NoParent
	}
	if fc.Executables != nil {
		c.Executables = fc.Executables
	}
	if fc.PathsToIgnore != nil {
		c.PathsToIgnore = fc.PathsToIgnore
	}
	if fc.ExcludeGlobs != nil {
		c.ExcludeGlobs = fc.ExcludeGlobs
	}
	if fc.ExecutablesOnly != nil {
		c.ExecutablesOnly = *fc.ExecutablesOnly
	}
	if fc.ProbeTimeout != nil {
		c.ProbeTimeout = *fc.ProbeTimeout
	}
	if fc.ProbeOrder != nil {
		order, err := ParseProbeOrder(fc.ProbeOrder)
		if err != nil {
			return err
		}
		c.ProbeOrder = order
	}
	if fc.ProbeLocations != nil {
		c.ProbeLocations = *fc.ProbeLocations
	}
	if fc.Filter != nil {
		c.Filter = *fc.Filter
	}
	if fc.Jobs != nil {
		c.Jobs = *fc.Jobs
	}
	if fc.Timeout != nil {
		c.Timeout = *fc.Timeout
	}
	if fc.MaxOutputBytes != nil {
		c.MaxOutputBytes = *fc.MaxOutputBytes
	}
	if fc.FailFast != nil {
		c.FailFast = *fc.FailFast
	}
	if fc.Color != nil {
		c.Color = *fc.Color
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.GTest.ListArgs != nil {
		c.GTest.ListArgs = fc.GTest.ListArgs
	}
	if fc.GTest.FilterFlag != nil {
		c.GTest.FilterFlag = *fc.GTest.FilterFlag
	}
	if fc.GTest.RunDisabled != nil {
		c.GTest.RunDisabled = *fc.GTest.RunDisabled
	}
	if fc.GTest.ExtraArgs != nil {
		c.GTest.ExtraArgs = NormalizeArgs(fc.GTest.ExtraArgs)
	}
	if fc.Catch2.ListArgs != nil {
		c.Catch2.ListArgs = fc.Catch2.ListArgs
	}
	if fc.Catch2.ExtraArgs != nil {
		c.Catch2.ExtraArgs = NormalizeArgs(fc.Catch2.ExtraArgs)
	}
	return nil
}

// LoadEnv applies CTR_* variables. Values from envFile are used only when the
// process environment does not define the same key; the file is optional.
func (c *Config) LoadEnv(envFile string) error {
	fileEnv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.Configf("read env file %s: %w", envFile, err)
		}
		if values != nil {
			fileEnv = values
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	if v, ok := lookup("CTR_TEST_DIR"); ok {
		c.TestDir = v
		c.testDirSet = true
	}
	if v, ok := lookup("CTR_JOBS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.Configf("CTR_JOBS: %w", err)
		}
		c.Jobs = n
	}
	if v, ok := lookup("CTR_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.Configf("CTR_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v, ok := lookup("CTR_PROBE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.Configf("CTR_PROBE_TIMEOUT: %w", err)
		}
		c.ProbeTimeout = d
	}
	if v, ok := lookup("CTR_PROBE_ORDER"); ok {
		order, err := ParseProbeOrder(splitList(v))
		if err != nil {
			return err
		}
		c.ProbeOrder = order
	}
	if v, ok := lookup("CTR_GTEST_EXTRA_ARGS"); ok {
		c.GTest.ExtraArgs = NormalizeArgs(splitList(v))
	}
	if v, ok := lookup("CTR_CATCH2_EXTRA_ARGS"); ok {
		c.Catch2.ExtraArgs = NormalizeArgs(splitList(v))
	}
	if v, ok := lookup("CTR_COLOR"); ok {
		c.Color = v
	}
	if v, ok := lookup("CTR_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

// splitList splits a comma separated value the same way cobra splits slice flags
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Describe returns a short human readable summary used in debug logs
func (c *Config) Describe() string {
	return fmt.Sprintf("test_dir=%s jobs=%d timeout=%s probe_order=%s executables_only=%t",
		c.TestDir, c.Workers(), c.Timeout, ProbeOrderString(c.ProbeOrder), c.ExecutablesOnly)
}
