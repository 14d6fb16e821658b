package logging

// Standardized field names for structured logging.
// Keep these stable: log pipelines filter on them.
const (
	FieldFile          = "file_name"
	FieldFileID        = "file_id"
	FieldFolder        = "folder_name"
	FieldFolderID      = "folder_id"
	FieldCompany       = "company"
	FieldStatementType = "statement_type"
	FieldAccount       = "account_info"
	FieldScore         = "score"
	FieldReason        = "reason"
	FieldAction        = "action"
	FieldOperation     = "operation"
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldCount         = "count"
	FieldPath          = "path"
	FieldDryRun        = "dry_run"
)
