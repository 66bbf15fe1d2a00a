package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sahilm/fuzzy"
)

// pickerState holds the selection logic of the picker, apart from drawing
type pickerState struct {
	labels  []string
	query   string
	matches []fuzzy.Match // visible labels, best match first
	cursor  int           // position in matches
	marked  []int         // label indices in the order they were marked
}

func newPickerState(labels []string) *pickerState {
	s := &pickerState{labels: labels}
	s.setQuery("")
	return s
}

// setQuery filters the labels. An empty query shows every label in order.
func (s *pickerState) setQuery(query string) {
	s.query = query
	if strings.TrimSpace(query) == "" {
		s.matches = make([]fuzzy.Match, len(s.labels))
		for i, label := range s.labels {
			s.matches[i] = fuzzy.Match{Str: label, Index: i}
		}
	} else {
		s.matches = fuzzy.Find(query, s.labels)
	}
	s.cursor = min(s.cursor, max(len(s.matches)-1, 0))
}

func (s *pickerState) move(delta int) {
	if len(s.matches) == 0 {
		s.cursor = 0
		return
	}
	s.cursor = (s.cursor + delta + len(s.matches)) % len(s.matches)
}

// current returns the label index under the cursor
func (s *pickerState) current() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	return s.matches[s.cursor].Index, true
}

func (s *pickerState) isMarked(index int) bool {
	for _, m := range s.marked {
		if m == index {
			return true
		}
	}
	return false
}

func (s *pickerState) unmark(index int) {
	for i, m := range s.marked {
		if m == index {
			s.marked = append(s.marked[:i], s.marked[i+1:]...)
			return
		}
	}
}

// toggle flips the mark on the label under the cursor
func (s *pickerState) toggle() {
	index, ok := s.current()
	if !ok {
		return
	}
	if s.isMarked(index) {
		s.unmark(index)
		return
	}
	s.marked = append(s.marked, index)
}

// toggleAll unmarks every visible label when all are marked, otherwise marks
// the unmarked ones in display order
func (s *pickerState) toggleAll() {
	allMarked := len(s.matches) > 0
	for _, m := range s.matches {
		if !s.isMarked(m.Index) {
			allMarked = false
			break
		}
	}
	for _, m := range s.matches {
		switch {
		case allMarked:
			s.unmark(m.Index)
		case !s.isMarked(m.Index):
			s.marked = append(s.marked, m.Index)
		}
	}
}

// result is the marked labels, or the one under the cursor when none is marked
func (s *pickerState) result() []int {
	if len(s.marked) > 0 {
		return append([]int(nil), s.marked...)
	}
	if index, ok := s.current(); ok {
		return []int{index}
	}
	return []int{}
}

// highlight renders a match with its matched characters emphasized
func highlight(m fuzzy.Match) string {
	if len(m.MatchedIndexes) == 0 {
		return tview.Escape(m.Str)
	}
	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		matched[i] = true
	}

	var b, segment strings.Builder
	inMatch := false
	flush := func() {
		if segment.Len() == 0 {
			return
		}
		if inMatch {
			fmt.Fprintf(&b, "[yellow::b]%s[-::-]", tview.Escape(segment.String()))
		} else {
			b.WriteString(tview.Escape(segment.String()))
		}
		segment.Reset()
	}
	for i, r := range m.Str {
		if matched[i] != inMatch {
			flush()
			inMatch = matched[i]
		}
		segment.WriteRune(r)
	}
	flush()
	return b.String()
}

// FuzzyPicker is a full-screen fuzzy finder over test labels
type FuzzyPicker struct{}

// NewFuzzyPicker creates a new FuzzyPicker
func NewFuzzyPicker() *FuzzyPicker {
	return &FuzzyPicker{}
}

// Pick shows the labels and returns the chosen indices in the order they were
// marked. Enter with nothing marked picks the highlighted label; Esc picks
// nothing.
func (p *FuzzyPicker) Pick(ctx context.Context, labels []string) ([]int, error) {
	state := newPickerState(labels)
	var picked []int

	app := tview.NewApplication()

	input := tview.NewInputField().
		SetLabel("> ").
		SetFieldBackgroundColor(tcell.ColorDefault)

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	header := tview.NewTextView().SetDynamicColors(true)

	redraw := func() {
		list.Clear()
		for _, m := range state.matches {
			marker := "  "
			if state.isMarked(m.Index) {
				marker = "[green]●[-] "
			}
			list.AddItem(marker+highlight(m), "", 0, nil)
		}
		if len(state.matches) > 0 {
			list.SetCurrentItem(state.cursor)
		}
		header.SetText(fmt.Sprintf(" %d/%d  [green]%d marked[-]  | Tab mark, Ctrl-A mark all, Enter run, Esc cancel",
			len(state.matches), len(labels), len(state.marked)))
	}

	input.SetChangedFunc(func(text string) {
		state.setQuery(text)
		redraw()
	})

	input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyCtrlP:
			state.move(-1)
		case tcell.KeyDown, tcell.KeyCtrlN:
			state.move(1)
		case tcell.KeyTab:
			state.toggle()
			state.move(1)
		case tcell.KeyBacktab:
			state.toggle()
			state.move(-1)
		case tcell.KeyCtrlA:
			state.toggleAll()
		case tcell.KeyEnter:
			picked = state.result()
			app.Stop()
			return nil
		case tcell.KeyEsc, tcell.KeyCtrlC:
			picked = []int{}
			app.Stop()
			return nil
		default:
			return event
		}
		redraw()
		return nil
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(list, 0, 1, false).
		AddItem(header, 1, 0, false).
		AddItem(input, 1, 0, true)

	redraw()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			app.Stop()
		case <-done:
		}
	}()

	if err := app.SetRoot(layout, true).SetFocus(input).Run(); err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return picked, nil
}
