package discovery

import (
	"context"
	"fmt"

	"ctr/internal/domain"
)

// Picker lets a human choose among labels. It returns the chosen indices in
// the order they were picked; an empty result means nothing was chosen.
type Picker interface {
	Pick(ctx context.Context, labels []string) ([]int, error)
}

// Selector reduces the inventory to the test cases to act on
type Selector struct {
	filter *Filter
	picker Picker
}

// NewSelector creates a Selector. picker may be nil when interactive
// selection is never requested.
func NewSelector(filter *Filter, picker Picker) *Selector {
	return &Selector{filter: filter, picker: picker}
}

// Select applies the regex pattern and then, when interactive is set, the
// picker. Without interactive selection the inventory order is preserved.
func (s *Selector) Select(ctx context.Context, inventory []domain.TestCase, pattern string, interactive bool) ([]domain.TestCase, error) {
	candidates, err := s.filter.FilterByPattern(inventory, pattern)
	if err != nil {
		return nil, err
	}
	if !interactive {
		return candidates, nil
	}
	if s.picker == nil {
		return nil, domain.Configf("interactive selection is not available")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	labels := make([]string, len(candidates))
	for i, tc := range candidates {
		labels[i] = Label(tc)
	}

	picked, err := s.picker.Pick(ctx, labels)
	if err != nil {
		return nil, domain.NewFatalError(fmt.Errorf("interactive selection: %w", err))
	}

	selected := make([]domain.TestCase, 0, len(picked))
	seen := make(map[int]bool, len(picked))
	for _, idx := range picked {
		if idx < 0 || idx >= len(candidates) {
			return nil, domain.NewFatalError(fmt.Errorf("picker returned index %d out of %d candidates", idx, len(candidates)))
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		selected = append(selected, candidates[idx])
	}
	return selected, nil
}

// Label is the text shown for a test case in the picker
func Label(tc domain.TestCase) string {
	if tc.Framework == domain.Opaque {
		return tc.Name
	}
	return fmt.Sprintf("%s  (%s)", tc.Name, tc.Executable.Name)
}
