package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/statement-organizer/internal/fileutils"
	"fjacquet/statement-organizer/internal/models"

	"github.com/gocarina/gocsv"
)

// ExportEntry is one row of an export snapshot.
type ExportEntry struct {
	FileName       string           `json:"file_name" csv:"file_name"`
	Company        string           `json:"company" csv:"company"`
	StatementType  string           `json:"statement_type" csv:"statement_type"`
	AccountInfo    string           `json:"account_info" csv:"account_info"`
	LastUpdated    models.Timestamp `json:"last_updated" csv:"last_updated"`
	ManualOverride bool             `json:"manual_override,omitempty" csv:"manual_override"`
}

// Snapshot is the JSON export document.
type Snapshot struct {
	ExportDate models.Timestamp `json:"export_date"`
	TotalFiles int              `json:"total_files"`
	Files      []ExportEntry    `json:"files"`
}

// Entries flattens the cache sorted by company, then file name.
func (c *Cache) Entries() []ExportEntry {
	c.mu.Lock()
	entries := make([]ExportEntry, 0, len(c.records))
	for _, rec := range c.records {
		entries = append(entries, ExportEntry{
			FileName:       rec.FileName,
			Company:        rec.Company,
			StatementType:  rec.StatementType,
			AccountInfo:    rec.AccountInfo,
			LastUpdated:    rec.LastUpdated,
			ManualOverride: rec.ManualOverride,
		})
	}
	c.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Company != entries[j].Company {
			return entries[i].Company < entries[j].Company
		}
		return entries[i].FileName < entries[j].FileName
	})
	return entries
}

// WriteJSON writes the export snapshot as indented JSON.
func (c *Cache) WriteJSON(w io.Writer) error {
	entries := c.Entries()
	snap := Snapshot{
		ExportDate: models.NewTimestamp(c.now()),
		TotalFiles: len(entries),
		Files:      entries,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// WriteCSV writes the flattened entries as CSV with a header row.
func (c *Cache) WriteCSV(w io.Writer) error {
	entries := c.Entries()
	if err := gocsv.Marshal(&entries, w); err != nil {
		return fmt.Errorf("failed to encode CSV export: %w", err)
	}
	return nil
}

// ExportFile writes the snapshot to path. A ".csv" extension selects CSV,
// anything else JSON.
func (c *Cache) ExportFile(path string) error {
	var buf strings.Builder
	var err error
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = c.WriteCSV(&buf)
	} else {
		err = c.WriteJSON(&buf)
	}
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, []byte(buf.String()), models.PermissionExport); err != nil {
		return fmt.Errorf("failed to write export %s: %w", path, err)
	}
	return nil
}
