package models

// Duplicate-resolution actions.
const (
	ActionCopy   Action = "copy"
	ActionSkip   Action = "skip"
	ActionRename Action = "rename"
)

// Duplicate-assessment reasons.
const (
	ReasonNoDuplicate            = "no duplicate found"
	ReasonAlreadyPresent         = "already present"
	ReasonIdenticalContent       = "identical content"
	ReasonNameConflict           = "same name, different content"
	ReasonIdenticalElsewhere     = "identical content elsewhere"
	ReasonDestinationUnavailable = "destination unavailable, assuming no duplicate"
)

// ClassificationVersion tags every cached record.
const ClassificationVersion = "1.0"

// FolderMimeType is the Drive MIME type of folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// File permissions
const (
	PermissionStateFile = 0600
	PermissionDirectory = 0750
	PermissionExport    = 0644
)
