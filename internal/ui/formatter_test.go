package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctr/internal/domain"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func listFixture() []domain.TestCase {
	unit := domain.Executable{Path: "/b/unit", Name: "unit"}
	tool := domain.Executable{Path: "/b/tool", Name: "tool"}
	return []domain.TestCase{
		{Name: "S.A", Executable: unit, Framework: domain.GoogleTest, Args: []string{"--gtest_filter=S.A"}, File: "/src/unit_test.cpp", Line: 12},
		{Name: "S.B", Executable: unit, Framework: domain.GoogleTest, Args: []string{"--gtest_filter=S.B"}},
		{Name: "tool", Executable: tool, Framework: domain.Opaque},
	}
}

func TestFormatter_PrintList(t *testing.T) {
	disableColor(t)

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(&buf).PrintList(listFixture(), OutputPlain))
		assert.Equal(t, "S.A\nS.B\ntool\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(&buf).PrintList(listFixture(), OutputJSON))
		assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 3)
		assert.Equal(t, "gtest", decoded[0]["framework"])
		assert.Equal(t, []any{"--gtest_filter=S.A"}, decoded[0]["arguments"])
		assert.Equal(t, "/src/unit_test.cpp", decoded[0]["file"])
		assert.Equal(t, float64(12), decoded[0]["line"])
		assert.NotContains(t, decoded[1], "file")
		assert.NotContains(t, decoded[1], "line")
	})

	t.Run("empty json is an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(&buf).PrintList(nil, OutputPrettyJSON))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("tree", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(&buf).PrintList(listFixture(), OutputTree))
		out := buf.String()
		assert.Contains(t, out, "Found 3 test(s) in 2 executable(s)")
		assert.Contains(t, out, "├── unit [gtest]")
		assert.Contains(t, out, "│   ├── S.A /src/unit_test.cpp:12")
		assert.Contains(t, out, "│   └── S.B")
		assert.Contains(t, out, "└── tool [opaque]")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := NewFormatter(&bytes.Buffer{}).PrintList(listFixture(), "xml")
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
	})
}

func TestFormatter_PrintFailures(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer

	NewFormatter(&buf).PrintFailures([]domain.ExecutionResult{
		{TestCase: listFixture()[0], Status: domain.StatusFailed, ExitCode: 1, Output: []byte("unit.cpp:3: Failure\n")},
		{TestCase: listFixture()[1], Status: domain.StatusTimeout, Error: "timed out after 1s"},
	})

	out := buf.String()
	assert.Contains(t, out, "✗ S.A  (unit)")
	assert.Contains(t, out, "exited with code 1")
	assert.Contains(t, out, "unit.cpp:3: Failure")
	assert.Contains(t, out, "timed out after 1s")
	assert.Less(t, strings.Index(out, "S.A"), strings.Index(out, "S.B"))
}

func TestFormatter_PrintSummary(t *testing.T) {
	disableColor(t)

	t.Run("failures listed", func(t *testing.T) {
		results := []domain.ExecutionResult{
			{TestCase: listFixture()[0], Status: domain.StatusPassed},
			{TestCase: listFixture()[1], Status: domain.StatusCrashed, Duration: 1500 * time.Millisecond},
		}
		var buf bytes.Buffer
		NewFormatter(&buf).PrintSummary(domain.Summarize(results, 2*time.Second), 4, false)

		out := buf.String()
		assert.Contains(t, out, "S.B")
		assert.Contains(t, out, "CRASHED")
		assert.Contains(t, strings.ToLower(out), "1 passed, 1 failed")
		assert.Contains(t, out, "FAIL")
		assert.NotContains(t, out, "S.A")
	})

	t.Run("all passed", func(t *testing.T) {
		results := []domain.ExecutionResult{{TestCase: listFixture()[0], Status: domain.StatusPassed}}
		var buf bytes.Buffer
		NewFormatter(&buf).PrintSummary(domain.Summarize(results, time.Second), 1, false)
		assert.Contains(t, buf.String(), "All 1 test(s) passed")
	})

	t.Run("nothing selected", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatter(&buf).PrintSummary(domain.Summarize(nil, 0), 1, false)
		assert.Equal(t, "No tests selected.\n", buf.String())
	})
}

func TestLineReporter(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	reporter := NewLineReporter(&buf, 2)

	reporter.Update(1, 1, 0, domain.ExecutionResult{TestCase: domain.TestCase{Name: "S.A"}, Status: domain.StatusPassed})
	reporter.Update(2, 1, 1, domain.ExecutionResult{TestCase: domain.TestCase{Name: "S.B"}, Status: domain.StatusTimeout})
	reporter.Finish()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[1/2] S.A ...."))
	assert.True(t, strings.HasSuffix(lines[0], " PASSED"))
	assert.Len(t, lines[0], lineWidth)
	assert.True(t, strings.HasSuffix(lines[1], " TIMEOUT"))

	long := statusLine(1, 1, domain.ExecutionResult{TestCase: domain.TestCase{Name: strings.Repeat("x", 200)}, Status: domain.StatusFailed})
	assert.Contains(t, long, "x ... FAILED")
}

func TestFailureDetails(t *testing.T) {
	r := domain.ExecutionResult{
		TestCase: domain.TestCase{Name: "S.[x]", Framework: domain.GoogleTest, Args: []string{"--gtest_filter=S.[x]"}},
		Status:   domain.StatusFailed,
		ExitCode: 1,
		Output:   []byte("/src/a.cpp:9: Failure\n\x1b[31mboom\x1b[0m\n"),
	}

	details := failureDetails(r)
	assert.Contains(t, details, "Location: /src/a.cpp:9")
	assert.Contains(t, details, "boom")
	assert.NotContains(t, details, "\x1b[")
	assert.Contains(t, failureStats(r), "FAILED")
}
