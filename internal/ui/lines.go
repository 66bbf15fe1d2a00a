package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ctr/internal/domain"
)

const lineWidth = 120

// LineReporter prints one line per finished test, for logs and pipes where
// a redrawn progress bar would be noise.
type LineReporter struct {
	w     io.Writer
	total int
}

// NewLineReporter creates a reporter for a run of total tests
func NewLineReporter(w io.Writer, total int) *LineReporter {
	return &LineReporter{w: w, total: total}
}

// Update prints "[i/N] name ....... STATUS"
func (l *LineReporter) Update(completed, _, _ int, result domain.ExecutionResult) {
	fmt.Fprintln(l.w, statusLine(completed, l.total, result))
}

// Finish is a no-op; every line is already complete
func (l *LineReporter) Finish() {}

func statusLine(completed, total int, result domain.ExecutionResult) string {
	head := fmt.Sprintf("[%d/%d] %s ", completed, total, result.TestCase.Name)
	tail := " " + strings.ToUpper(result.Status.String())
	fill := max(lineWidth-len(head)-len(tail), 3)
	line := head + strings.Repeat(".", fill) + tail

	switch result.Status {
	case domain.StatusPassed:
		return color.GreenString(line)
	case domain.StatusCancelled:
		return color.YellowString(line)
	}
	return color.RedString(line)
}
