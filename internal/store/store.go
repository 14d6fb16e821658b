// Package store persists flat key→record maps as JSON documents on disk.
// The classification cache and the processed ledger are both built on it.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"fjacquet/statement-organizer/internal/fileutils"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/sorterror"
)

// Backend loads and saves a whole map of records.
type Backend[T any] interface {
	Load() (map[string]T, error)
	Save(records map[string]T) error
	Location() string
}

// JSONStore keeps records in a single JSON file that is rewritten whole on
// every Save.
type JSONStore[T any] struct {
	path   string
	logger logging.Logger
}

// NewJSONStore creates a store backed by path. A leading "~/" is expanded.
func NewJSONStore[T any](path string, logger logging.Logger) *JSONStore[T] {
	if logger == nil {
		logger = logging.Nop()
	}
	return &JSONStore[T]{path: fileutils.ExpandHome(path), logger: logger}
}

// Location returns the file path backing the store.
func (s *JSONStore[T]) Location() string {
	return s.path
}

// Load reads the file. A missing file yields an empty map and no error;
// unreadable or corrupt content yields an empty map and a StoreError.
func (s *JSONStore[T]) Load() (map[string]T, error) {
	records := make(map[string]T)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.WithField(logging.FieldPath, s.path).Debug("State file not found, starting empty")
		return records, nil
	}
	if err != nil {
		return make(map[string]T), sorterror.NewStoreError("load", s.path, err)
	}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return make(map[string]T), sorterror.NewStoreError("load", s.path, err)
	}
	if records == nil {
		// a literal null decodes to a nil map
		records = make(map[string]T)
	}

	s.logger.WithFields(
		logging.F(logging.FieldPath, s.path),
		logging.F(logging.FieldCount, len(records)),
	).Debug("Loaded state file")
	return records, nil
}

// Save rewrites the file with records.
func (s *JSONStore[T]) Save(records map[string]T) error {
	if records == nil {
		records = make(map[string]T)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return sorterror.NewStoreError("save", s.path, fmt.Errorf("marshal: %w", err))
	}
	if err := fileutils.WriteFileAtomic(s.path, data, models.PermissionStateFile); err != nil {
		return sorterror.NewStoreError("save", s.path, err)
	}
	return nil
}
