package parser

import (
	"strings"

	"ctr/internal/domain"
)

// Catch2Parser parses Catch2 console reporter output
type Catch2Parser struct{}

// NewCatch2Parser creates a new Catch2Parser
func NewCatch2Parser() *Catch2Parser {
	return &Catch2Parser{}
}

// ParseFailure extracts "file:line: FAILED:" blocks. The assertion and its
// expansion follow the location; a separator rule ends the block.
func (p *Catch2Parser) ParseFailure(result domain.ExecutionResult) []domain.TestFailure {
	var (
		failures []domain.TestFailure
		current  *domain.TestFailure
		message  []string
	)

	flush := func() {
		if current != nil {
			current.Message = trimMessage(message)
			failures = append(failures, *current)
		}
		current, message = nil, nil
	}

	for _, raw := range strings.Split(string(result.Output), "\n") {
		line := strings.TrimRight(raw, "\r")

		if isCatch2Rule(line) {
			flush()
			continue
		}

		if prefix, ok := strings.CutSuffix(strings.TrimSpace(line), ": FAILED:"); ok {
			if file, lineNo, ok := splitLocation(prefix); ok {
				flush()
				current = &domain.TestFailure{TestName: result.TestCase.Name, File: file, Line: lineNo}
				continue
			}
		}

		if current != nil {
			message = append(message, line)
		}
	}
	flush()

	return failures
}

// isCatch2Rule reports lines made of one repeated separator character
func isCatch2Rule(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < 10 {
		return false
	}
	c := line[0]
	if c != '-' && c != '=' && c != '.' {
		return false
	}
	return strings.Count(line, string(c)) == len(line)
}
