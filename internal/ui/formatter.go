package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ctr/internal/domain"
)

// List output formats accepted by PrintList
const (
	OutputPlain      = "plain"
	OutputJSON       = "json"
	OutputPrettyJSON = "pretty-json"
	OutputTree       = "tree"
)

// Formatter formats and displays output
type Formatter struct {
	w io.Writer
}

// NewFormatter creates a new Formatter writing to w
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// PrintList prints the inventory in the requested format
func (f *Formatter) PrintList(cases []domain.TestCase, format string) error {
	if cases == nil {
		cases = []domain.TestCase{}
	}

	switch format {
	case OutputPlain:
		for _, tc := range cases {
			fmt.Fprintln(f.w, tc.Name)
		}
		return nil
	case OutputJSON, OutputPrettyJSON:
		var (
			data []byte
			err  error
		)
		if format == OutputPrettyJSON {
			data, err = json.MarshalIndent(cases, "", "  ")
		} else {
			data, err = json.Marshal(cases)
		}
		if err != nil {
			return fmt.Errorf("marshal test list: %w", err)
		}
		_, err = fmt.Fprintln(f.w, string(data))
		return err
	case OutputTree:
		f.printTree(cases)
		return nil
	}
	return domain.Configf("unknown output format %q (want plain, json, pretty-json or tree)", format)
}

// printTree prints test cases grouped under their executable
func (f *Formatter) printTree(cases []domain.TestCase) {
	type group struct {
		exe   domain.Executable
		cases []domain.TestCase
	}
	var groups []*group
	byPath := make(map[string]*group)
	for _, tc := range cases {
		g, ok := byPath[tc.Executable.Path]
		if !ok {
			g = &group{exe: tc.Executable}
			byPath[tc.Executable.Path] = g
			groups = append(groups, g)
		}
		g.cases = append(g.cases, tc)
	}

	fmt.Fprintln(f.w, color.GreenString("Found %d test(s) in %d executable(s):", len(cases), len(groups)))
	fmt.Fprintln(f.w)

	for i, g := range groups {
		isLastExe := i == len(groups)-1
		branch, indent := "├── ", "│   "
		if isLastExe {
			branch, indent = "└── ", "    "
		}

		fw := g.cases[0].Framework
		fmt.Fprintf(f.w, "%s%s %s\n", branch, color.CyanString(g.exe.Name), color.HiBlackString("[%s]", fw))

		if fw == domain.Opaque {
			fmt.Fprintf(f.w, "%s└── %s\n", indent, color.HiBlackString("(runs as a single test)"))
			continue
		}
		for j, tc := range g.cases {
			leaf := "├── "
			if j == len(g.cases)-1 {
				leaf = "└── "
			}
			location := ""
			if tc.File != "" {
				location = " " + color.HiBlackString("%s:%d", tc.File, tc.Line)
			}
			fmt.Fprintf(f.w, "%s%s%s%s\n", indent, leaf, color.YellowString(tc.Name), location)
		}
	}
}

// PrintFailures prints the captured output of every non-passing result in
// the order given
func (f *Formatter) PrintFailures(failures []domain.ExecutionResult) {
	for _, r := range failures {
		fmt.Fprintln(f.w)
		fmt.Fprintln(f.w, color.RedString("✗ %s", r.TestCase.Name)+color.HiBlackString("  (%s)", r.TestCase.Executable.Name))
		fmt.Fprintln(f.w, color.YellowString("  %s", describeResult(r)))
		if out := strings.TrimRight(string(r.Output), "\n"); out != "" {
			fmt.Fprintln(f.w)
			fmt.Fprintln(f.w, out)
		}
	}
}

func describeResult(r domain.ExecutionResult) string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Status == domain.StatusFailed:
		return fmt.Sprintf("exited with code %d", r.ExitCode)
	}
	return r.Status.String()
}

// PrintSummary renders the run totals and the failing tests as a table
func (f *Formatter) PrintSummary(summary domain.RunSummary, workers int, interrupted bool) {
	if summary.Total == 0 {
		fmt.Fprintln(f.w, color.YellowString("No tests selected."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.w)
	t.SetTitle("Test Execution Summary")
	t.AppendHeader(table.Row{"TEST", "EXECUTABLE", "STATUS", "DURATION"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "TEST", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "DURATION", Align: text.AlignRight},
	})

	for _, r := range summary.Failures {
		t.AppendRow(table.Row{r.TestCase.Name, r.TestCase.Executable.Name, strings.ToUpper(r.Status.String()), formatDuration(r.Duration)})
	}

	overall := "PASS"
	switch {
	case interrupted:
		overall = "INTERRUPTED"
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	case !summary.Success():
		overall = "FAIL"
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d passed, %d failed", summary.Passed, summary.Failed),
		fmt.Sprintf("%d worker(s)", workers),
		overall,
		formatDuration(summary.Duration),
	})
	t.Render()

	fmt.Fprintln(f.w)
	if summary.Success() && !interrupted {
		fmt.Fprintln(f.w, color.GreenString("✓ All %d test(s) passed", summary.Total))
		return
	}
	fmt.Fprintln(f.w, color.RedString("✗ %d test(s) passed, %d test(s) failed", summary.Passed, summary.Failed))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
