package exporters

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExportToFile writes the current state to path as indented JSON. The file
// is written under a temporary name and renamed into place.
func (s *Service) ExportToFile(path string) (ExportResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	result, err := s.Export(tmp, FormatJSON)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return ExportResult{}, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return ExportResult{}, fmt.Errorf("failed to move export into place: %w", err)
	}
	result.Path = path
	return result, nil
}
