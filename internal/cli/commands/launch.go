package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ctr/internal/launchjson"
)

// LaunchCommand prints VS Code launch configurations for the selected tests
type LaunchCommand struct {
	pipeline *Pipeline
	out      io.Writer
	opts     launchjson.Options
}

// NewLaunchCommand creates a new LaunchCommand
func NewLaunchCommand(pipeline *Pipeline, out io.Writer) *LaunchCommand {
	return &LaunchCommand{
		pipeline: pipeline,
		out:      out,
		opts:     launchjson.DefaultOptions(),
	}
}

// SetOptions sets the launch configuration options parsed from flags
func (lc *LaunchCommand) SetOptions(opts launchjson.Options) {
	lc.opts = opts
}

// Execute runs the command
func (lc *LaunchCommand) Execute(cmd *cobra.Command, args []string) error {
	cases, err := lc.pipeline.Select(cmd.Context(), lc.pipeline.Logger())
	if err != nil {
		return err
	}

	data, err := launchjson.Render(cases, lc.opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(lc.out, string(data))
	return err
}
