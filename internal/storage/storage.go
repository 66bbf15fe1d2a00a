package storage

import (
	"time"

	"ctr/internal/domain"
)

// Storage persists the results of a run
type Storage interface {
	Save(results []domain.ExecutionResult, duration time.Duration, workers int, interrupted bool) (*Report, error)
}

// JSONStorage writes a JSON report to a fixed path
type JSONStorage struct {
	path string
	now  func() time.Time
}

// NewJSONStorage returns a Storage that writes the report to path
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path, now: time.Now}
}

// Path returns the report location
func (s *JSONStorage) Path() string {
	return s.path
}
