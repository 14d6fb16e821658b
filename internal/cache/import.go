package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/sorterror"

	"gopkg.in/yaml.v3"
)

// ManualMapping is one human correction. Missing classification fields
// overwrite the cached value with empty.
type ManualMapping struct {
	FileName      string `json:"file_name" yaml:"file_name"`
	Company       string `json:"company" yaml:"company"`
	StatementType string `json:"statement_type" yaml:"statement_type"`
	AccountInfo   string `json:"account_info" yaml:"account_info"`
}

// ManualMappingDocument is the import file layout; it matches the export
// snapshot so an edited export can be fed back.
type ManualMappingDocument struct {
	Files []ManualMapping `json:"files" yaml:"files"`
}

// ImportManualMapping reads corrections from path (JSON, or YAML for .yaml/.yml)
// and overlays them. It returns the number of cache records updated.
func (c *Cache) ImportManualMapping(path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user supplied import file
	if err != nil {
		return 0, &sorterror.ImportError{Source: path, Entry: -1, Reason: "cannot read file", Err: err}
	}
	ext := strings.ToLower(filepath.Ext(path))
	return c.ImportManualMappingData(data, path, ext == ".yaml" || ext == ".yml")
}

// ImportManualMappingData overlays corrections onto every record whose file
// name equals the mapping's file_name, marking them as manual overrides.
// Malformed input or an entry without file_name fails the whole import and
// leaves the cache unchanged.
func (c *Cache) ImportManualMappingData(data []byte, source string, isYAML bool) (int, error) {
	var doc ManualMappingDocument
	var err error
	if isYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return 0, &sorterror.ImportError{Source: source, Entry: -1, Reason: "invalid document", Err: err}
	}
	for i, m := range doc.Files {
		if strings.TrimSpace(m.FileName) == "" {
			return 0, &sorterror.ImportError{Source: source, Entry: i, Reason: "missing file_name"}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := models.NewTimestamp(c.now())
	updated := make(map[string]models.ClassificationRecord)
	for _, m := range doc.Files {
		matched := 0
		for key, rec := range c.records {
			if rec.FileName != m.FileName {
				continue
			}
			rec.Company = m.Company
			rec.StatementType = m.StatementType
			rec.AccountInfo = m.AccountInfo
			rec.LastUpdated = now
			rec.ManualOverride = true
			updated[key] = rec
			matched++
		}
		if matched == 0 {
			c.logger.WithField(logging.FieldFile, m.FileName).Warn("Manual mapping matches no cached file")
		}
	}

	for key, rec := range updated {
		c.records[key] = rec
	}
	if len(updated) > 0 {
		c.flushLocked()
	}
	c.logger.WithFields(
		logging.F(logging.FieldPath, source),
		logging.F(logging.FieldCount, len(updated)),
	).Info("Imported manual mappings")
	return len(updated), nil
}
