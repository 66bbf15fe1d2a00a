// Package parser pulls failure locations and messages out of the captured
// output of GoogleTest and Catch2 test processes.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acarl005/stripansi"

	"ctr/internal/domain"
)

// maxMessageLines caps how much of the output is kept per extracted failure
const maxMessageLines = 40

// Parser parses test output and extracts failures
type Parser interface {
	ParseFailure(result domain.ExecutionResult) []domain.TestFailure
}

// ForFramework returns the parser for fw, or nil for opaque executables
func ForFramework(fw domain.Framework) Parser {
	switch fw {
	case domain.GoogleTest:
		return NewGTestParser()
	case domain.Catch2:
		return NewCatch2Parser()
	}
	return nil
}

// Failures returns the failures of a non-passing result. When the output
// holds nothing recognizable a single failure describing the exit is
// returned, so every failed result has at least one entry.
func Failures(result domain.ExecutionResult) []domain.TestFailure {
	if result.Passed() {
		return nil
	}
	// Colored gtest output wraps the location lines in escape sequences
	result.Output = []byte(stripansi.Strip(string(result.Output)))
	if p := ForFramework(result.TestCase.Framework); p != nil {
		if failures := p.ParseFailure(result); len(failures) > 0 {
			return failures
		}
	}
	return []domain.TestFailure{{
		TestName: result.TestCase.Name,
		Message:  describeExit(result),
	}}
}

func describeExit(result domain.ExecutionResult) string {
	msg := result.Error
	if msg == "" {
		msg = fmt.Sprintf("exited with code %d", result.ExitCode)
	}
	if tail := lastLines(string(result.Output), 10); tail != "" {
		msg += "\n\n" + tail
	}
	return msg
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\r\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// splitLocation splits "file:12" or "file(12)" style prefixes. ok is false
// when prefix does not end in a line number.
func splitLocation(prefix string) (file string, line int, ok bool) {
	if strings.HasSuffix(prefix, ")") {
		open := strings.LastIndexByte(prefix, '(')
		if open <= 0 {
			return "", 0, false
		}
		n, err := strconv.Atoi(prefix[open+1 : len(prefix)-1])
		if err != nil {
			return "", 0, false
		}
		return prefix[:open], n, true
	}

	colon := strings.LastIndexByte(prefix, ':')
	if colon <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(prefix[colon+1:])
	if err != nil {
		return "", 0, false
	}
	return prefix[:colon], n, true
}

// trimMessage drops surrounding blank lines and caps the length
func trimMessage(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > maxMessageLines {
		more := len(lines) - maxMessageLines
		lines = append(lines[:maxMessageLines:maxMessageLines], fmt.Sprintf("... and %d more lines", more))
	}
	return strings.Join(lines, "\n")
}
