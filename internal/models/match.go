package models

// MatchResult is a scored destination-folder candidate.
type MatchResult struct {
	FolderID   string
	FolderName string
	Score      int
	Reasons    []string // rule tags in evaluation order
}

// Action is the recommended handling of a candidate copy.
type Action string

// DuplicateAssessment is the outcome of comparing a candidate copy against the
// destination folder contents.
type DuplicateAssessment struct {
	ExactNameMatch     *RemoteFile
	ContentMatch       *RemoteFile
	SimilarNameMatches []RemoteFile
	RecommendedAction  Action
	Reason             string
}

// ProcessedEntry records that a document was filed into a destination folder.
type ProcessedEntry struct {
	FileName              string    `json:"file_name"`
	DestinationFolderName string    `json:"destination_folder_name"`
	ProcessedAt           Timestamp `json:"processed_at"`
	RunID                 string    `json:"run_id,omitempty"`
}
