package ui

import "ctr/internal/domain"

// Viewer displays the failures of a run in an interactive TUI
type Viewer interface {
	View(summary domain.RunSummary) error
}
