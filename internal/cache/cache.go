// Package cache implements the persistent classification cache. Records are
// keyed by document identity and survive across runs; every mutation
// rewrites the backing store.
package cache

import (
	"crypto/md5" // #nosec G501 -- key derivation only, matches existing cache files
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/store"
)

// Stats summarizes cache contents.
type Stats struct {
	Total           int
	Classified      int
	Unclassified    int
	ManualOverrides int
	FileBytes       int64
}

// Cache is safe for concurrent use. A mutex guards the map and every flush
// happens under it, so read-modify-write per key is serializable.
type Cache struct {
	mu      sync.Mutex
	backend store.Backend[models.ClassificationRecord]
	records map[string]models.ClassificationRecord
	logger  logging.Logger
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New loads the cache from backend. Load failures are logged and leave the
// cache empty.
func New(backend store.Backend[models.ClassificationRecord], logger logging.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Cache{
		backend: backend,
		logger:  logger.WithField(logging.FieldComponent, "cache"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	records, err := backend.Load()
	if err != nil {
		c.logger.WithError(err).Warn("Could not load classification cache, starting empty")
		records = nil
	}
	if records == nil {
		records = make(map[string]models.ClassificationRecord)
	}
	c.records = records
	return c
}

// Key derives the cache key for identity: md5 hex of "id:name:size".
func Key(identity models.DocumentIdentity) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", identity.ID, identity.Name, identity.SizeString()))) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// Get returns the cached classification for identity. A record with every
// field empty is still a hit.
func (c *Cache) Get(identity models.DocumentIdentity) (models.Classification, bool) {
	rec, ok := c.Record(identity)
	if !ok {
		return models.Classification{}, false
	}
	return rec.Classification(), true
}

// Record returns the full cached record for identity.
func (c *Cache) Record(identity models.DocumentIdentity) (models.ClassificationRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[Key(identity)]
	return rec, ok
}

// Put stores classification for identity and persists the whole cache.
// Records carrying a manual override are never replaced by Put.
func (c *Cache) Put(identity models.DocumentIdentity, classification models.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(identity)
	if existing, ok := c.records[key]; ok && existing.ManualOverride {
		c.logger.WithField(logging.FieldFile, identity.Name).Debug("Keeping manual override")
		return
	}

	c.records[key] = models.ClassificationRecord{
		FileID:                identity.ID,
		FileName:              identity.Name,
		FileSize:              identity.SizeString(),
		Company:               classification.Company,
		StatementType:         classification.StatementType,
		AccountInfo:           classification.AccountInfo,
		LastUpdated:           models.NewTimestamp(c.now()),
		ClassificationVersion: models.ClassificationVersion,
	}
	c.flushLocked()
}

// Clear drops every record and persists the empty cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]models.ClassificationRecord)
	c.flushLocked()
	c.logger.Info("Classification cache cleared")
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Stats counts records. A record is classified when both company and
// statement type are set.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Total: len(c.records)}
	for _, rec := range c.records {
		if rec.Classification().IsComplete() {
			s.Classified++
		}
		if rec.ManualOverride {
			s.ManualOverrides++
		}
	}
	s.Unclassified = s.Total - s.Classified
	if info, err := os.Stat(c.backend.Location()); err == nil {
		s.FileBytes = info.Size()
	}
	return s
}

// flushLocked persists the records. Failures are logged and swallowed; the
// in-memory cache stays authoritative for the rest of the run.
func (c *Cache) flushLocked() {
	if err := c.backend.Save(c.records); err != nil {
		c.logger.WithError(err).Warn("Could not persist classification cache")
	}
}
