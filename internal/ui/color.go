package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConfigureColor applies a --color mode (auto, yes, no) to all color output
// and reports whether color ended up enabled. auto follows whether out is a
// terminal and honors NO_COLOR.
func ConfigureColor(mode string, out *os.File) bool {
	switch mode {
	case "yes", "always":
		color.NoColor = false
	case "no", "never":
		color.NoColor = true
	default:
		_, noColor := os.LookupEnv("NO_COLOR")
		color.NoColor = noColor || os.Getenv("TERM") == "dumb" || !IsTerminal(out)
	}
	return !color.NoColor
}
