package ui

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ctr/internal/domain"
	"ctr/internal/parser"
)

// ErrorViewer displays the failures of a run in an interactive TUI
type ErrorViewer struct{}

var _ Viewer = (*ErrorViewer)(nil)

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer() *ErrorViewer {
	return &ErrorViewer{}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(summary domain.RunSummary) error {
	failures := summary.Failures
	if len(failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	// Marks are session-only; nothing is written back
	resolved := make(map[int]bool)

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	listItemText := func(index int) string {
		r := failures[index]
		if resolved[index] {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(r.TestCase.Name))
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(r.TestCase.Name))
	}

	for i := range failures {
		list.AddItem(listItemText(i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		unresolved := len(failures) - len(resolved)
		headerView.SetText(fmt.Sprintf(" Test Failures (%d of %d, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, q quit ",
			len(failures), summary.Total, unresolved))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		statsView.SetText(failureStats(failures[index]))
		detailsView.SetText(failureDetails(failures[index])).ScrollToBeginning()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyEsc, tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				app.Stop()
				return nil
			case 'r', 'R':
				index := list.GetCurrentItem()
				if resolved[index] {
					delete(resolved, index)
				} else {
					resolved[index] = true
				}
				list.SetItemText(index, listItemText(index), "")
				updateHeader()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return domain.NewFatalError(fmt.Errorf("failed to run TUI: %w", err))
	}
	return nil
}

// failureStats formats the header line for a failed test
func failureStats(r domain.ExecutionResult) string {
	return fmt.Sprintf("[cyan]executable:[white] [yellow]%s[white]\n[cyan]status:[white] [red]%s[white]  [cyan]duration:[white] %s",
		tview.Escape(r.TestCase.Executable.Path), strings.ToUpper(r.Status.String()), formatDuration(r.Duration))
}

// failureDetails formats the extracted failures and the captured output
// using tview color tags
func failureDetails(r domain.ExecutionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", tview.Escape(r.TestCase.Name))
	if len(r.TestCase.Args) > 0 {
		fmt.Fprintf(&b, "[cyan]Arguments:[white] %s\n\n", tview.Escape(strings.Join(r.TestCase.Args, " ")))
	}

	for _, failure := range parser.Failures(r) {
		if failure.File != "" {
			fmt.Fprintf(&b, "[yellow]Location: %s:%d[white]\n", tview.Escape(failure.File), failure.Line)
		}
		if failure.Message != "" {
			fmt.Fprintf(&b, "%s\n", tview.Escape(failure.Message))
		}
		b.WriteString("\n")
	}

	if out := strings.TrimSpace(string(r.Output)); out != "" {
		fmt.Fprintf(&b, "[yellow]Output:[white]\n%s\n", tview.Escape(stripansi.Strip(out)))
	}
	return b.String()
}
