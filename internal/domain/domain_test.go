package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFramework(t *testing.T) {
	tests := []struct {
		in      string
		want    Framework
		wantErr bool
	}{
		{in: "gtest", want: GoogleTest},
		{in: " GoogleTest ", want: GoogleTest},
		{in: "catch2", want: Catch2},
		{in: "catch", want: Catch2},
		{in: "opaque", want: Opaque},
		{in: "boost", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFramework(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTestCase_JSON(t *testing.T) {
	tc := TestCase{
		Name:       "Suite.Case",
		Executable: Executable{Path: "/b/unit", Name: "unit"},
		Framework:  GoogleTest,
		Args:       []string{"--gtest_filter=Suite.Case"},
	}
	data, err := json.Marshal(tc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Suite.Case",
		"executable": {"path": "/b/unit", "name": "unit"},
		"framework": "gtest",
		"arguments": ["--gtest_filter=Suite.Case"]
	}`, string(data))

	assert.Equal(t, "/b/unit::Suite.Case", tc.Key())
}

func TestSummarize(t *testing.T) {
	results := []ExecutionResult{
		{TestCase: TestCase{Name: "a"}, Status: StatusPassed},
		{TestCase: TestCase{Name: "b"}, Status: StatusFailed, ExitCode: 1},
		{TestCase: TestCase{Name: "c"}, Status: StatusTimeout, ExitCode: -1},
		{TestCase: TestCase{Name: "d"}, Status: StatusPassed},
		{TestCase: TestCase{Name: "e"}, Status: StatusCrashed, ExitCode: -1},
	}

	summary := Summarize(results, time.Second)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, summary.Total, summary.Passed+summary.Failed)
	assert.False(t, summary.Success())
	require.Len(t, summary.Failures, 3)
	assert.Equal(t, "b", summary.Failures[0].TestCase.Name)
	assert.Equal(t, "e", summary.Failures[2].TestCase.Name)

	t.Run("empty run succeeds", func(t *testing.T) {
		s := Summarize(nil, 0)
		assert.Zero(t, s.Total)
		assert.True(t, s.Success())
	})
}

func TestErrors(t *testing.T) {
	cfgErr := fmt.Errorf("loading: %w", Configf("bad value %d", 3))
	assert.True(t, IsConfigurationError(cfgErr))
	assert.Contains(t, cfgErr.Error(), "bad value 3")
	assert.False(t, IsConfigurationError(errors.New("plain")))
	assert.False(t, IsConfigurationError(nil))

	failErr := fmt.Errorf("run: %w", &TestFailureError{Failed: 2, Total: 5})
	assert.True(t, IsTestFailureError(failErr))
	assert.Equal(t, "run: 2 of 5 test(s) failed", failErr.Error())

	inner := errors.New("picker crashed")
	fatal := NewFatalError(inner)
	assert.ErrorIs(t, fatal, inner)
}

func TestStatus_String(t *testing.T) {
	data, err := json.Marshal(StatusTimeout)
	require.NoError(t, err)
	assert.Equal(t, `"timeout"`, string(data))
	assert.Equal(t, "cancelled", StatusCancelled.String())
}
