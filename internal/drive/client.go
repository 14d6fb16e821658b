package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/sorterror"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const fileFields = "id, name, mimeType, size, md5Checksum"

// Client implements DocumentStore on the Google Drive v3 API. Calls are
// made once; retry and backoff are left to the transport.
type Client struct {
	service *drive.Service
	logger  logging.Logger
}

// NewClient builds a Drive service on top of an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, logger logging.Logger) (*Client, error) {
	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return NewClientFromService(svc, logger), nil
}

// NewClientFromService wraps an existing Drive service.
func NewClientFromService(svc *drive.Service, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{service: svc, logger: logger.WithField(logging.FieldComponent, "drive")}
}

// ListChildren pages through all non-trashed children of folderID.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]models.RemoteFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))

	var out []models.RemoteFile
	err := c.service.Files.List().
		Q(q).
		Fields("nextPageToken, files(" + fileFields + ")").
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, toRemoteFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, sorterror.NewCollaboratorError("list children", folderID, err)
	}

	c.logger.WithFields(
		logging.F(logging.FieldFolderID, folderID),
		logging.F(logging.FieldCount, len(out)),
	).Debug("Listed folder")
	return out, nil
}

// GetMetadata fetches a single file's metadata.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (models.RemoteFile, error) {
	f, err := c.service.Files.Get(fileID).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return models.RemoteFile{}, sorterror.NewCollaboratorError("get metadata", fileID, err)
	}
	return toRemoteFile(f), nil
}

// FetchContent downloads the file body.
func (c *Client) FetchContent(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, sorterror.NewCollaboratorError("download", fileID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sorterror.NewCollaboratorError("download", fileID, err)
	}
	return data, nil
}

// CreateFolder creates a folder under parentID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drive.File{Name: name, MimeType: models.FolderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	f, err := c.service.Files.Create(meta).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", sorterror.NewCollaboratorError("create folder", name, err)
	}

	c.logger.WithFields(
		logging.F(logging.FieldFolder, name),
		logging.F(logging.FieldFolderID, f.Id),
	).Info("Created folder")
	return f.Id, nil
}

// CopyFile copies fileID into destFolderID as newName.
func (c *Client) CopyFile(ctx context.Context, fileID, newName, destFolderID string) (models.RemoteFile, error) {
	f, err := c.service.Files.Copy(fileID, &drive.File{
		Name:    newName,
		Parents: []string{destFolderID},
	}).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return models.RemoteFile{}, sorterror.NewCollaboratorError("copy", fileID, err)
	}
	return toRemoteFile(f), nil
}

// RenameFolder renames folderID to newName.
func (c *Client) RenameFolder(ctx context.Context, folderID, newName string) error {
	_, err := c.service.Files.Update(folderID, &drive.File{Name: newName}).
		Fields("id, name").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return sorterror.NewCollaboratorError("rename folder", folderID, err)
	}
	return nil
}

// FindFolder returns the id of the first folder named name, optionally
// restricted to parentID.
func (c *Client) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), models.FolderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}

	list, err := c.service.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(10).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", sorterror.NewCollaboratorError("find folder", name, err)
	}
	if len(list.Files) == 0 {
		return "", sorterror.NewCollaboratorError("find folder", name, sorterror.ErrNotFound)
	}
	return list.Files[0].Id, nil
}

func toRemoteFile(f *drive.File) models.RemoteFile {
	rf := models.RemoteFile{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		IsFolder:    f.MimeType == models.FolderMimeType,
		ContentHash: f.Md5Checksum,
	}
	if !rf.IsFolder && f.Size > 0 {
		size := f.Size
		rf.Size = &size
	}
	return rf
}

// escapeQuery escapes a value for use inside a single-quoted Drive query literal.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
