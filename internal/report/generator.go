// Package report renders the outcome of an organize run for archiving.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/statement-organizer/internal/fileutils"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/organizer"

	"github.com/gocarina/gocsv"
)

// Row is one document of a run, flattened for JSON and CSV.
type Row struct {
	RunID         string `json:"-" csv:"run_id"`
	FileID        string `json:"file_id" csv:"file_id"`
	FileName      string `json:"file_name" csv:"file_name"`
	Status        string `json:"status" csv:"status"`
	Company       string `json:"company" csv:"company"`
	StatementType string `json:"statement_type" csv:"statement_type"`
	AccountInfo   string `json:"account_info" csv:"account_info"`
	Destination   string `json:"destination,omitempty" csv:"destination"`
	StoredName    string `json:"stored_name,omitempty" csv:"stored_name"`
	Reason        string `json:"reason,omitempty" csv:"reason"`
	Error         string `json:"error,omitempty" csv:"error"`
}

type summary struct {
	Total            int     `json:"total_files"`
	Processed        int     `json:"processed"`
	Copied           int     `json:"copied"`
	Renamed          int     `json:"renamed"`
	Duplicates       int     `json:"duplicates"`
	AlreadyProcessed int     `json:"already_processed"`
	Skipped          int     `json:"skipped"`
	Unclassified     int     `json:"unclassified"`
	Errors           int     `json:"errors"`
	SuccessRate      float64 `json:"success_rate"`
}

type document struct {
	RunID       string           `json:"run_id"`
	GeneratedAt models.Timestamp `json:"generated_at"`
	DryRun      bool             `json:"dry_run"`
	Stats       summary          `json:"stats"`
	Files       []Row            `json:"files"`
}

// ReportGenerator renders organize reports in various formats.
type ReportGenerator struct {
	logger logging.Logger
	now    func() models.Timestamp
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldComponent, "report"),
		now:    func() models.Timestamp { return models.NewTimestamp(time.Now()) },
	}
}

// Rows flattens the outcomes of r in run order.
func Rows(r *organizer.Report) []Row {
	rows := make([]Row, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		row := Row{
			RunID:         r.RunID,
			FileID:        o.File.ID,
			FileName:      o.File.Name,
			Status:        string(o.Status),
			Company:       o.Classification.Company,
			StatementType: o.Classification.StatementType,
			AccountInfo:   o.Classification.AccountInfo,
			Destination:   o.Destination,
			Reason:        o.Reason,
		}
		if o.StoredName != o.File.Name {
			row.StoredName = o.StoredName
		}
		if o.Err != nil {
			row.Error = o.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// GenerateReport renders r as "json" or "csv".
func (g *ReportGenerator) GenerateReport(r *organizer.Report, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSONReport(r)
	case "csv":
		return g.generateCSVReport(r)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(r *organizer.Report) ([]byte, error) {
	s := r.Stats
	doc := document{
		RunID:       r.RunID,
		GeneratedAt: g.now(),
		DryRun:      r.DryRun,
		Stats: summary{
			Total:            s.Total,
			Processed:        s.Processed,
			Copied:           s.Copied,
			Renamed:          s.Renamed,
			Duplicates:       s.Duplicates,
			AlreadyProcessed: s.AlreadyProcessed,
			Skipped:          s.Skipped,
			Unclassified:     s.Unclassified,
			Errors:           s.Errors,
			SuccessRate:      s.SuccessRate(),
		},
		Files: Rows(r),
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateCSVReport(r *organizer.Report) ([]byte, error) {
	rows := Rows(r)
	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatForPath picks the report format from the file extension: ".csv"
// selects CSV, anything else JSON.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "json"
}

// WriteFile renders r in the format implied by path and writes it atomically.
func (g *ReportGenerator) WriteFile(r *organizer.Report, path string) error {
	data, err := g.GenerateReport(r, FormatForPath(path))
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, data, models.PermissionExport); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	g.logger.Info("Wrote organize report",
		logging.F(logging.FieldPath, path),
		logging.F(logging.FieldRunID, r.RunID))
	return nil
}
