package parser

import (
	"strings"

	"ctr/internal/domain"
)

const gtestRunMarker = "[ RUN      ] "

// GTestParser parses GoogleTest output
type GTestParser struct{}

// NewGTestParser creates a new GTestParser
func NewGTestParser() *GTestParser {
	return &GTestParser{}
}

// ParseFailure extracts "file:line: Failure" blocks. The message is every
// line up to the next location or gtest status line.
func (p *GTestParser) ParseFailure(result domain.ExecutionResult) []domain.TestFailure {
	var (
		failures []domain.TestFailure
		current  *domain.TestFailure
		message  []string
	)
	testName := result.TestCase.Name

	flush := func() {
		if current != nil {
			current.Message = trimMessage(message)
			failures = append(failures, *current)
		}
		current, message = nil, nil
	}

	for _, raw := range strings.Split(string(result.Output), "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "[") {
			flush()
			if name, ok := strings.CutPrefix(line, gtestRunMarker); ok {
				testName = strings.TrimSpace(name)
			}
			continue
		}

		if file, lineNo, headline, ok := gtestLocation(line); ok {
			flush()
			current = &domain.TestFailure{TestName: testName, File: file, Line: lineNo}
			if headline != "" {
				message = append(message, headline)
			}
			continue
		}

		if current != nil {
			message = append(message, line)
		}
	}
	flush()

	return failures
}

// gtestLocation matches "file:12: Failure" (gcc/clang) and
// "file(12): error: msg" (MSVC)
func gtestLocation(line string) (file string, lineNo int, headline string, ok bool) {
	for _, marker := range []string{": Failure", ": error:"} {
		idx := strings.Index(line, marker)
		if idx <= 0 {
			continue
		}
		file, lineNo, ok = splitLocation(line[:idx])
		if !ok {
			continue
		}
		return file, lineNo, strings.TrimSpace(line[idx+len(marker):]), true
	}
	return "", 0, "", false
}
