package models

import "fjacquet/statement-organizer/internal/logging"

// OrganizeStats tracks the outcome of an organize run.
type OrganizeStats struct {
	Total            int // documents listed in the source folder
	Processed        int // documents that reached the duplicate check
	Copied           int // copied under their own name
	Renamed          int // copied under a generated unique name
	Duplicates       int // skipped because the destination already holds them
	AlreadyProcessed int // skipped by the processed ledger
	Skipped          int // unsupported extension
	Unclassified     int // company or statement type missing
	Errors           int
}

// LogSummary logs a summary of the run.
func (s OrganizeStats) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}

	logger.Info("Organize summary",
		logging.Field{Key: "total_files", Value: s.Total},
		logging.Field{Key: "processed", Value: s.Processed},
		logging.Field{Key: "copied", Value: s.Copied},
		logging.Field{Key: "renamed", Value: s.Renamed},
		logging.Field{Key: "duplicates", Value: s.Duplicates},
		logging.Field{Key: "already_processed", Value: s.AlreadyProcessed},
		logging.Field{Key: "skipped", Value: s.Skipped},
		logging.Field{Key: "unclassified", Value: s.Unclassified},
		logging.Field{Key: "errors", Value: s.Errors},
		logging.Field{Key: "success_rate", Value: s.SuccessRate()},
	)
}

// SuccessRate is the share of listed documents that ended up filed (copied or
// renamed) or were found already filed, as a percentage.
func (s OrganizeStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0.0
	}
	filed := s.Copied + s.Renamed + s.Duplicates + s.AlreadyProcessed
	return float64(filed) / float64(s.Total) * 100.0
}
