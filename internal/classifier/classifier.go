// Package classifier derives (company, statement type, account) for a
// document from its file name and, when needed, its extracted text.
package classifier

import (
	"strings"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/patterns"
	"fjacquet/statement-organizer/internal/textutils"
)

// TextExtractor turns document bytes into plain text. Implementations return
// an empty string on any failure and never panic.
type TextExtractor interface {
	ExtractText(content []byte) string
}

// Cache is the subset of the classification cache the classifier needs.
type Cache interface {
	Get(identity models.DocumentIdentity) (models.Classification, bool)
	Put(identity models.DocumentIdentity, classification models.Classification)
}

// Classifier orchestrates the pattern catalog, the account extractor and the
// cache. It never fails: anything it cannot derive is left empty.
type Classifier struct {
	catalog   *patterns.Catalog
	cache     Cache
	extractor TextExtractor
	logger    logging.Logger
}

// New creates a Classifier. cache and extractor may be nil.
func New(catalog *patterns.Catalog, cache Cache, extractor TextExtractor, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Classifier{
		catalog:   catalog,
		cache:     cache,
		extractor: extractor,
		logger:    logger.WithField(logging.FieldComponent, "classifier"),
	}
}

// Classify returns the classification for a document. When identity is
// given the cache is consulted first, and any cached record, including one
// where nothing matched, is returned as-is. content may be nil.
func (c *Classifier) Classify(identity *models.DocumentIdentity, name string, content []byte) models.Classification {
	if identity != nil && c.cache != nil {
		if cached, ok := c.cache.Get(*identity); ok {
			c.logger.WithFields(
				logging.F(logging.FieldFile, name),
				logging.F(logging.FieldCompany, cached.Company),
				logging.F(logging.FieldStatementType, cached.StatementType),
			).Debug("Using cached classification")
			return cached
		}
	}

	result := c.classify(name, content)

	if identity != nil && c.cache != nil {
		c.cache.Put(*identity, result)
	}

	c.logger.WithFields(
		logging.F(logging.FieldFile, name),
		logging.F(logging.FieldCompany, result.Company),
		logging.F(logging.FieldStatementType, result.StatementType),
		logging.F(logging.FieldAccount, result.AccountInfo),
	).Debug("Classified document")
	return result
}

func (c *Classifier) classify(name string, content []byte) models.Classification {
	lowerName := strings.ToLower(name)
	result := models.Classification{
		Company:       c.catalog.MatchCompany(lowerName),
		StatementType: c.catalog.MatchStatementType(lowerName),
		AccountInfo:   textutils.ExtractFromName(name),
	}

	if content == nil {
		return result
	}

	// Text is extracted at most once, and only if something still needs it.
	var text string
	extracted := false
	documentText := func() string {
		if !extracted {
			text = c.extractText(content)
			extracted = true
		}
		return text
	}

	if result.AccountInfo == "" {
		result.AccountInfo = textutils.ExtractFromContent(documentText())
	}

	if result.Company == "" || result.StatementType == "" {
		lowerText := strings.ToLower(documentText())
		if result.Company == "" {
			result.Company = c.catalog.MatchCompany(lowerText)
		}
		if result.StatementType == "" {
			result.StatementType = c.catalog.MatchStatementType(lowerText)
		}
	}
	return result
}

func (c *Classifier) extractText(content []byte) string {
	if c.extractor == nil || len(content) == 0 {
		return ""
	}
	return c.extractor.ExtractText(content)
}
