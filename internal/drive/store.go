// Package drive talks to the remote document store. Client is the Google
// Drive v3 implementation; MemoryStore is an in-process fake used by tests
// and offline commands.
package drive

import (
	"context"

	"fjacquet/statement-organizer/internal/models"
)

// DocumentStore is everything the organizer needs from the remote store.
type DocumentStore interface {
	// ListChildren returns the direct, non-trashed children of folderID in
	// listing order.
	ListChildren(ctx context.Context, folderID string) ([]models.RemoteFile, error)
	// GetMetadata returns name, size and content hash of a file.
	GetMetadata(ctx context.Context, fileID string) (models.RemoteFile, error)
	// FetchContent downloads the file bytes.
	FetchContent(ctx context.Context, fileID string) ([]byte, error)
	// CreateFolder creates name under parentID and returns the new id.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	// CopyFile copies fileID into destFolderID under newName.
	CopyFile(ctx context.Context, fileID, newName, destFolderID string) (models.RemoteFile, error)
	// RenameFolder renames folderID.
	RenameFolder(ctx context.Context, folderID, newName string) error
	// FindFolder looks a folder up by exact name. An empty parentID searches
	// everywhere. It returns an error wrapping sorterror.ErrNotFound when
	// nothing matches.
	FindFolder(ctx context.Context, name, parentID string) (string, error)
}
