// Package tracker records which documents were already filed into which
// destination folder, so repeated runs do not copy them again.
package tracker

import (
	"sort"
	"strings"
	"sync"
	"time"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/store"
)

// Tracker is the processed ledger. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	backend store.Backend[models.ProcessedEntry]
	entries map[string]models.ProcessedEntry
	logger  logging.Logger
	now     func() time.Time
}

// New loads the ledger from backend; load failures leave it empty.
func New(backend store.Backend[models.ProcessedEntry], logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.Nop()
	}
	t := &Tracker{
		backend: backend,
		logger:  logger.WithField(logging.FieldComponent, "tracker"),
		now:     time.Now,
	}
	entries, err := backend.Load()
	if err != nil {
		t.logger.WithError(err).Warn("Could not load processed ledger, starting empty")
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]models.ProcessedEntry)
	}
	t.entries = entries
	return t
}

// SetClock overrides the time source.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Key identifies a (document, destination) pair. The document part is
// id:name:size, so a file replaced in place under the same id is filed again.
func Key(identity models.DocumentIdentity, destinationFolderID string) string {
	return strings.Join([]string{identity.ID, identity.Name, identity.SizeString(), destinationFolderID}, ":")
}

// IsProcessed reports whether identity was already filed into destinationFolderID.
func (t *Tracker) IsProcessed(identity models.DocumentIdentity, destinationFolderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[Key(identity, destinationFolderID)]
	return ok
}

// MarkProcessed records a timestamped entry and persists the ledger.
func (t *Tracker) MarkProcessed(identity models.DocumentIdentity, destinationFolderID, destinationFolderName, runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[Key(identity, destinationFolderID)] = models.ProcessedEntry{
		FileName:              identity.Name,
		DestinationFolderName: destinationFolderName,
		ProcessedAt:           models.NewTimestamp(t.now()),
		RunID:                 runID,
	}
	if err := t.backend.Save(t.entries); err != nil {
		t.logger.WithError(err).Warn("Could not persist processed ledger")
	}
}

// Entries returns the ledger ordered by processing time, then file name.
func (t *Tracker) Entries() []models.ProcessedEntry {
	t.mu.Lock()
	out := make([]models.ProcessedEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ProcessedAt.Equal(out[j].ProcessedAt.Time) {
			return out[i].ProcessedAt.Before(out[j].ProcessedAt.Time)
		}
		return out[i].FileName < out[j].FileName
	})
	return out
}

// Clear empties the ledger.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]models.ProcessedEntry)
	if err := t.backend.Save(t.entries); err != nil {
		t.logger.WithError(err).Warn("Could not persist processed ledger")
	}
}
