// Package models provides the data structures shared by the classification,
// matching and duplicate-resolution components.
package models

import (
	"strconv"
	"strings"
)

// DocumentIdentity uniquely identifies a remote file for caching and dedup purposes.
type DocumentIdentity struct {
	ID          string
	Name        string
	Size        *int64 // nil when the store did not report a size
	ContentHash string // empty when unknown
}

// SizeString renders the size the way cache keys expect it: empty when unknown.
func (d DocumentIdentity) SizeString() string {
	if d.Size == nil {
		return ""
	}
	return strconv.FormatInt(*d.Size, 10)
}

// Classification is the (company, statementType, accountInfo) tuple derived for a
// document. Empty strings mean "absent".
type Classification struct {
	Company       string
	StatementType string
	AccountInfo   string
}

// IsEmpty reports whether nothing at all was derived.
func (c Classification) IsEmpty() bool {
	return c.Company == "" && c.StatementType == "" && c.AccountInfo == ""
}

// IsComplete reports whether both company and statement type are known, which is
// what the organize pipeline needs to file a document.
func (c Classification) IsComplete() bool {
	return c.Company != "" && c.StatementType != ""
}

// ClassificationRecord is the persisted form of a cached classification.
type ClassificationRecord struct {
	FileID                string    `json:"file_id"`
	FileName              string    `json:"file_name"`
	FileSize              string    `json:"file_size,omitempty"`
	Company               string    `json:"company"`
	StatementType         string    `json:"statement_type"`
	AccountInfo           string    `json:"account_info"`
	LastUpdated           Timestamp `json:"last_updated"`
	ClassificationVersion string    `json:"classification_version"`
	ManualOverride        bool      `json:"manual_override,omitempty"`
}

// Classification returns the tuple held by the record.
func (r ClassificationRecord) Classification() Classification {
	return Classification{
		Company:       r.Company,
		StatementType: r.StatementType,
		AccountInfo:   r.AccountInfo,
	}
}

// RemoteFile is an entry of the remote document store.
type RemoteFile struct {
	ID          string
	Name        string
	MimeType    string
	IsFolder    bool
	Size        *int64
	ContentHash string
}

// Identity converts the remote file into a DocumentIdentity.
func (f RemoteFile) Identity() DocumentIdentity {
	return DocumentIdentity{
		ID:          f.ID,
		Name:        f.Name,
		Size:        f.Size,
		ContentHash: f.ContentHash,
	}
}

// Folders returns the folder entries of a listing in listing order.
func Folders(files []RemoteFile) []RemoteFile {
	return filterFiles(files, true)
}

// Documents returns the non-folder entries of a listing in listing order.
func Documents(files []RemoteFile) []RemoteFile {
	return filterFiles(files, false)
}

func filterFiles(files []RemoteFile, folders bool) []RemoteFile {
	out := make([]RemoteFile, 0, len(files))
	for _, f := range files {
		if f.IsFolder == folders {
			out = append(out, f)
		}
	}
	return out
}

// HasExtension reports whether the file name ends with one of exts (case-insensitive).
func (f RemoteFile) HasExtension(exts []string) bool {
	lower := strings.ToLower(f.Name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
