package discovery

import (
	"context"
	"iter"
	"sync"

	"github.com/rs/zerolog"

	"ctr/internal/domain"
)

// Inventory builds the ordered list of test cases from discovered executables
type Inventory struct {
	prober Prober
	jobs   int
	log    zerolog.Logger
}

// NewInventory creates an Inventory that runs at most jobs probes at once
func NewInventory(prober Prober, jobs int, logger zerolog.Logger) *Inventory {
	if jobs <= 0 {
		jobs = 1
	}
	return &Inventory{
		prober: prober,
		jobs:   jobs,
		log:    logger.With().Str("component", "inventory").Logger(),
	}
}

// Build probes every executable and flattens the results. Executables keep
// the order they were yielded in and test cases keep their listing order,
// however the probes were scheduled. Exact duplicates within one executable
// are dropped; equal names in different executables are kept.
func (inv *Inventory) Build(ctx context.Context, executables iter.Seq[domain.Executable]) ([]domain.TestCase, error) {
	// One slot per executable, filled by whichever goroutine probes it
	var slots []*[]domain.TestCase
	sem := make(chan struct{}, inv.jobs)
	var wg sync.WaitGroup

	for exe := range executables {
		if ctx.Err() != nil {
			break
		}
		slot := new([]domain.TestCase)
		slots = append(slots, slot)

		sem <- struct{}{}
		wg.Add(1)
		go func(exe domain.Executable, slot *[]domain.TestCase) {
			defer wg.Done()
			defer func() { <-sem }()
			*slot = inv.prober.Probe(ctx, exe)
		}(exe, slot)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cases []domain.TestCase
	seen := make(map[string]bool)
	for _, slot := range slots {
		for _, tc := range *slot {
			key := tc.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			cases = append(cases, tc)
		}
	}

	inv.log.Debug().Int("executables", len(slots)).Int("tests", len(cases)).Msg("Inventory built")
	return cases, nil
}
