package commands

import (
	"os"

	"github.com/spf13/cobra"

	"ctr/internal/config"
	"ctr/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	pipeline  *Pipeline
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, pipeline *Pipeline, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		pipeline:  pipeline,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	ui.ConfigureColor(lc.config.Color, os.Stdout)

	cases, err := lc.pipeline.Select(cmd.Context(), lc.pipeline.Logger())
	if err != nil {
		return err
	}
	return lc.formatter.PrintList(cases, lc.config.Flags.Output)
}
