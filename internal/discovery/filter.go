package discovery

import (
	"regexp"

	"ctr/internal/domain"
)

// Filter filters test cases by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByPattern keeps the test cases whose fully-qualified name matches the
// regular expression, in their original order. An empty pattern keeps all.
func (f *Filter) FilterByPattern(cases []domain.TestCase, pattern string) ([]domain.TestCase, error) {
	if pattern == "" {
		return cases, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, domain.Configf("invalid filter %q: %w", pattern, err)
	}

	filtered := make([]domain.TestCase, 0, len(cases))
	for _, tc := range cases {
		if re.MatchString(tc.Name) {
			filtered = append(filtered, tc)
		}
	}
	return filtered, nil
}
