package commands

import (
	"os"

	"github.com/spf13/cobra"

	"ctr/internal/cli"
	"ctr/internal/config"
	"ctr/internal/discovery"
	"ctr/internal/domain"
	"ctr/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run    *RunCommand
	List   *ListCommand
	Launch *LaunchCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	filter := discovery.NewFilter()
	picker := ui.NewFuzzyPicker()
	selector := discovery.NewSelector(filter, picker)
	pipeline := NewPipeline(cfg, selector)
	formatter := ui.NewFormatter(os.Stdout)
	errorViewer := ui.NewErrorViewer()

	return &Commands{
		Run:    NewRunCommand(cfg, pipeline, formatter, errorViewer),
		List:   NewListCommand(cfg, pipeline, formatter),
		Launch: NewLaunchCommand(pipeline, os.Stdout),
	}
}

// prepare resolves the config from file, environment and flags, in that order
func prepare(cmd *cobra.Command, flags *cli.Flags, cfg *config.Config) error {
	if err := cfg.LoadFile(flags.ConfigPath); err != nil {
		return err
	}
	if err := cfg.LoadEnv(config.DefaultEnvFile); err != nil {
		return err
	}
	if err := cfg.ApplyFlags(flags.ToConfigFlags(cli.Changed(cmd.Flags()))); err != nil {
		return err
	}
	return cfg.Validate()
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	flags.AddCommonFlags(rootCmd.PersistentFlags())

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run C++ tests in parallel",
		Long:  "Discover GoogleTest and Catch2 tests and run each one as its own process using parallel workers",
		Args:  cobra.NoArgs,
		RunE:  c.Run.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd, flags, cfg)
		},
	}
	flags.AddRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Find test executables, list their tests and print them without running anything",
		Args:  cobra.NoArgs,
		RunE:  c.List.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd, flags, cfg); err != nil {
				return err
			}
			switch flags.Output {
			case ui.OutputPlain, ui.OutputJSON, ui.OutputPrettyJSON, ui.OutputTree:
				return nil
			}
			return domain.Configf("unknown output format %q (want plain, json, pretty-json or tree)", flags.Output)
		},
	}
	flags.AddListFlags(listCmd.Flags())
	rootCmd.AddCommand(listCmd)

	// Launch-json command
	launchCmd := &cobra.Command{
		Use:   "launch-json",
		Short: "Print a VS Code launch.json for the selected tests",
		Long:  "Generate one debugger launch configuration per selected test",
		Args:  cobra.NoArgs,
		RunE:  c.Launch.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd, flags, cfg); err != nil {
				return err
			}
			opts, err := flags.LaunchOptions()
			if err != nil {
				return err
			}
			c.Launch.SetOptions(opts)
			return nil
		},
	}
	flags.AddLaunchFlags(launchCmd.Flags())
	rootCmd.AddCommand(launchCmd)
}
