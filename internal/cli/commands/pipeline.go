package commands

import (
	"context"
	"iter"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"ctr/internal/config"
	"ctr/internal/discovery"
	"ctr/internal/domain"
	"ctr/internal/logging"
)

// Pipeline turns the resolved config into the selected test cases:
// locate executables, probe them, then filter or pick.
type Pipeline struct {
	config   *config.Config
	selector *discovery.Selector
}

// NewPipeline creates a new Pipeline
func NewPipeline(cfg *config.Config, selector *discovery.Selector) *Pipeline {
	return &Pipeline{config: cfg, selector: selector}
}

// Logger builds the logger for the current config
func (p *Pipeline) Logger() zerolog.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = p.config.LogLevel
	cfg.NoColor = color.NoColor
	return logging.New(cfg)
}

// Select returns the test cases to act on, in inventory order unless the
// interactive picker chose another order.
func (p *Pipeline) Select(ctx context.Context, log zerolog.Logger) ([]domain.TestCase, error) {
	cfg := p.config
	log.Debug().Str("config", cfg.Describe()).Msg("Resolved configuration")

	executables, err := p.executables(log)
	if err != nil {
		return nil, err
	}

	probe := discovery.NewFrameworkProbe(probeOptions(cfg), log)
	inventory, err := discovery.NewInventory(probe, cfg.Workers(), log).Build(ctx, executables)
	if err != nil {
		return nil, err
	}

	return p.selector.Select(ctx, inventory, cfg.Filter, cfg.Interactive)
}

func (p *Pipeline) executables(log zerolog.Logger) (iter.Seq[domain.Executable], error) {
	cfg := p.config
	scanner, err := discovery.NewScanner(cfg.PathsToIgnore, cfg.ExcludeGlobs, log)
	if err != nil {
		return nil, err
	}

	if len(cfg.Executables) > 0 {
		return scanner.FromPaths(cfg.Executables)
	}

	root, err := config.FindTestDir(cfg.TestDir, cfg.NoParent)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("test_dir", root).Msg("Scanning for test executables")
	return scanner.Scan(root)
}

func probeOptions(cfg *config.Config) discovery.ProbeOptions {
	return discovery.ProbeOptions{
		Disabled:  cfg.ExecutablesOnly,
		Locations: cfg.ProbeLocations,
		Timeout:   cfg.ProbeTimeout,
		Order:     cfg.ProbeOrder,
		GTest:     cfg.GTest,
		Catch2:    cfg.Catch2,
	}
}
