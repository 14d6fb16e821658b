// Package container provides dependency injection for the statement organizer.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/statement-organizer/internal/cache"
	"fjacquet/statement-organizer/internal/classifier"
	"fjacquet/statement-organizer/internal/config"
	"fjacquet/statement-organizer/internal/drive"
	"fjacquet/statement-organizer/internal/duplicates"
	"fjacquet/statement-organizer/internal/fileutils"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/matcher"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/organizer"
	"fjacquet/statement-organizer/internal/patterns"
	"fjacquet/statement-organizer/internal/pdfparser"
	"fjacquet/statement-organizer/internal/store"
	"fjacquet/statement-organizer/internal/tracker"
)

// Container holds all application dependencies and provides methods to access them.
//
// The local components (catalog, cache, tracker, classifier) are built
// eagerly. The document store needs OAuth and is only opened on first use,
// so offline commands never touch the network.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	catalog    *patterns.Catalog
	cache      *cache.Cache
	tracker    *tracker.Tracker
	extractor  classifier.TextExtractor
	classifier *classifier.Classifier

	storeMu sync.Mutex
	store   drive.DocumentStore
}

// Option customizes a Container, mostly for tests.
type Option func(*Container)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithDocumentStore supplies the document store instead of opening Drive.
func WithDocumentStore(ds drive.DocumentStore) Option {
	return func(c *Container) { c.store = ds }
}

// WithTextExtractor replaces the default PDF text extractor.
func WithTextExtractor(extractor classifier.TextExtractor) Option {
	return func(c *Container) { c.extractor = extractor }
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	catalog, err := loadCatalog(cfg.Patterns.File)
	if err != nil {
		return nil, err
	}
	c.catalog = catalog

	c.cache = cache.New(
		store.NewJSONStore[models.ClassificationRecord](fileutils.ExpandHome(cfg.Cache.File), c.logger),
		c.logger,
	)
	c.tracker = tracker.New(
		store.NewJSONStore[models.ProcessedEntry](fileutils.ExpandHome(cfg.Tracker.File), c.logger),
		c.logger,
	)

	if c.extractor == nil {
		c.extractor = pdfparser.NewDefaultExtractor(c.logger)
	}
	c.classifier = classifier.New(c.catalog, c.cache, c.extractor, c.logger)

	c.logger.Debug("Container initialized",
		logging.F("companies", len(catalog.Companies())),
		logging.F("statement_types", len(catalog.StatementTypes())),
		logging.F("cached_classifications", c.cache.Len()))

	return c, nil
}

func loadCatalog(path string) (*patterns.Catalog, error) {
	if path == "" {
		return patterns.Default()
	}
	return patterns.LoadFile(fileutils.ExpandHome(path))
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCatalog returns the pattern catalog in use.
func (c *Container) GetCatalog() *patterns.Catalog {
	return c.catalog
}

// GetCache returns the classification cache.
func (c *Container) GetCache() *cache.Cache {
	return c.cache
}

// GetTracker returns the processed-file ledger.
func (c *Container) GetTracker() *tracker.Tracker {
	return c.tracker
}

// GetExtractor returns the text extractor used for document content.
func (c *Container) GetExtractor() classifier.TextExtractor {
	return c.extractor
}

// GetClassifier returns the classifier wired to the cache and extractor.
func (c *Container) GetClassifier() *classifier.Classifier {
	return c.classifier
}

// DocumentStore returns the remote document store, authorizing against
// Google Drive on first use.
func (c *Container) DocumentStore(ctx context.Context) (drive.DocumentStore, error) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if c.store != nil {
		return c.store, nil
	}

	httpClient, err := drive.NewHTTPClient(ctx, drive.AuthConfig{
		CredentialsFile: c.config.Drive.CredentialsFile,
		TokenFile:       c.config.Drive.TokenFile,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize Google Drive access: %w", err)
	}
	client, err := drive.NewClient(ctx, httpClient, c.logger)
	if err != nil {
		return nil, err
	}
	c.store = client
	return c.store, nil
}

// Matcher returns a folder matcher bound to the document store.
func (c *Container) Matcher(ctx context.Context) (*matcher.Matcher, error) {
	ds, err := c.DocumentStore(ctx)
	if err != nil {
		return nil, err
	}
	return matcher.New(ds, c.catalog, c.logger), nil
}

// Organizer returns the filing pipeline bound to the document store. Options
// left empty are filled from configuration.
func (c *Container) Organizer(ctx context.Context, opts organizer.Options) (*organizer.Organizer, error) {
	ds, err := c.DocumentStore(ctx)
	if err != nil {
		return nil, err
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = c.config.Organize.Extensions
	}
	return organizer.New(
		ds,
		c.classifier,
		matcher.New(ds, c.catalog, c.logger),
		duplicates.New(ds, c.logger),
		c.tracker,
		c.logger,
		opts,
	), nil
}

// Close performs cleanup of container resources. The cache and tracker
// persist on every write, so there is nothing to flush.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
