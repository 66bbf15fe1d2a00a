package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctr/internal/cli"
	"ctr/internal/cli/commands"
	"ctr/internal/config"
	"ctr/internal/domain"
	"ctr/internal/exitcodes"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "ctr",
		Short: "Parallel C++ test runner",
		Long: `Find GoogleTest and Catch2 executables, list the tests inside them and run
each selected test as its own process using parallel workers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	err := rootCmd.ExecuteContext(ctx)
	return exitCode(err, os.Stderr)
}

// exitCode reports err on w and maps it to the process exit code
func exitCode(err error, w io.Writer) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, color.YellowString("Interrupted"))
		return exitcodes.Interrupted
	case domain.IsTestFailureError(err):
		fmt.Fprintln(w, color.RedString("Error: %v", err))
		return exitcodes.TestFailure
	}
	fmt.Fprintln(w, color.RedString("Error: %v", err))
	return exitcodes.RuntimeErr
}
