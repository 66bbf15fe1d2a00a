package commands

import (
	"fmt"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctr/internal/config"
	"ctr/internal/domain"
	"ctr/internal/execution"
	"ctr/internal/storage"
	"ctr/internal/ui"
)

const gtestColorFlag = "--gtest_color=yes"

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	pipeline  *Pipeline
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	pipeline *Pipeline,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		pipeline:  pipeline,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := rc.config
	useColor := ui.ConfigureColor(cfg.Color, os.Stdout)
	log := rc.pipeline.Logger()

	cases, err := rc.pipeline.Select(ctx, log)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}
	if useColor {
		cases = withGTestColor(cases)
	}

	runner := execution.NewRunner(execution.ExecOptions{
		Timeout:        cfg.Timeout,
		MaxOutputBytes: cfg.MaxOutputBytes,
	}, log)
	pool := execution.NewWorkerPool(runner, cfg.Workers(), log)
	pool.SetFailFast(cfg.FailFast)
	if !cfg.Flags.NoProgress && ui.IsTerminal(os.Stderr) {
		pool.SetProgress(ui.NewProgressBar(len(cases), os.Stderr))
	} else {
		pool.SetProgress(ui.NewLineReporter(os.Stdout, len(cases)))
	}

	results, duration, runErr := pool.Execute(ctx, cases)
	interrupted := runErr != nil
	summary := domain.Summarize(results, duration)

	rc.formatter.PrintFailures(summary.Failures)
	fmt.Println()
	rc.formatter.PrintSummary(summary, cfg.Workers(), interrupted)

	if path := cfg.Flags.Report; path != "" {
		if _, err := storage.NewJSONStorage(path).Save(results, duration, cfg.Workers(), interrupted); err != nil {
			return domain.NewFatalError(fmt.Errorf("failed to save report: %w", err))
		}
		log.Info().Str("path", path).Msg("Report written")
	}

	if interrupted {
		return runErr
	}

	if !summary.Success() {
		if cfg.Flags.OpenFailures {
			if err := rc.viewer.View(summary); err != nil {
				return err
			}
		}
		return &domain.TestFailureError{Failed: summary.Failed, Total: summary.Total}
	}
	return nil
}

// withGTestColor asks GoogleTest executables to keep colored output even
// though it is captured through a pipe
func withGTestColor(cases []domain.TestCase) []domain.TestCase {
	out := make([]domain.TestCase, len(cases))
	for i, tc := range cases {
		if tc.Framework == domain.GoogleTest && !slices.Contains(tc.Args, gtestColorFlag) {
			tc.Args = append(slices.Clone(tc.Args), gtestColorFlag)
		}
		out[i] = tc
	}
	return out
}
