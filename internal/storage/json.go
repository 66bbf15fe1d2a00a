package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/google/uuid"

	"ctr/internal/domain"
	"ctr/internal/parser"
)

// Report is the document written by --report
type Report struct {
	RunID     string        `json:"run_id"`
	Timestamp string        `json:"timestamp"`
	Meta      ReportMeta    `json:"meta"`
	Results   []ReportEntry `json:"results"`
}

// ReportMeta holds the run totals
type ReportMeta struct {
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Interrupted     bool    `json:"interrupted,omitempty"`
}

// ReportEntry is one executed test case. Output is kept for failures only.
type ReportEntry struct {
	Name            string               `json:"name"`
	Executable      string               `json:"executable"`
	Framework       domain.Framework     `json:"framework"`
	Status          domain.Status        `json:"status"`
	ExitCode        int                  `json:"exit_code"`
	DurationSeconds float64              `json:"duration_seconds"`
	Error           string               `json:"error,omitempty"`
	Failures        []domain.TestFailure `json:"failures,omitempty"`
	Output          string               `json:"output,omitempty"`
}

// Save writes the run's results to the configured JSON file and returns the
// written report.
func (s *JSONStorage) Save(results []domain.ExecutionResult, duration time.Duration, workers int, interrupted bool) (*Report, error) {
	report := s.build(results, duration, workers, interrupted)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}

func (s *JSONStorage) build(results []domain.ExecutionResult, duration time.Duration, workers int, interrupted bool) *Report {
	summary := domain.Summarize(results, duration)

	report := &Report{
		RunID:     uuid.NewString(),
		Timestamp: s.now().Format(time.RFC3339),
		Meta: ReportMeta{
			Total:           summary.Total,
			Passed:          summary.Passed,
			Failed:          summary.Failed,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Workers:         workers,
			Interrupted:     interrupted,
		},
		Results: make([]ReportEntry, 0, len(results)),
	}

	for _, r := range results {
		entry := ReportEntry{
			Name:            r.TestCase.Name,
			Executable:      r.TestCase.Executable.Path,
			Framework:       r.TestCase.Framework,
			Status:          r.Status,
			ExitCode:        r.ExitCode,
			DurationSeconds: r.Duration.Seconds(),
			Error:           r.Error,
		}
		if !r.Passed() {
			entry.Failures = parser.Failures(r)
			entry.Output = stripansi.Strip(string(r.Output))
		}
		report.Results = append(report.Results, entry)
	}
	return report
}
