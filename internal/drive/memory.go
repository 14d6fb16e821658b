package drive

import (
	"context"
	"crypto/md5" // #nosec G501 -- mirrors Drive's md5Checksum
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/sorterror"
)

type memoryNode struct {
	file     models.RemoteFile
	parent   string
	content  []byte
	children []string
}

// MemoryStore is an in-memory DocumentStore. Ids are assigned sequentially
// and listings keep insertion order.
type MemoryStore struct {
	mu     sync.Mutex
	nodes  map[string]*memoryNode
	nextID int

	// Error flags for testing error conditions
	ListErrors  map[string]error // keyed by folder id
	FetchError  error
	CopyError   error
	CreateError error
	RenameError error

	// ListCalls counts ListChildren calls per folder id.
	ListCalls map[string]int
}

// NewMemoryStore creates an empty store with a root folder "root".
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		nodes:      make(map[string]*memoryNode),
		ListErrors: make(map[string]error),
		ListCalls:  make(map[string]int),
	}
	m.nodes["root"] = &memoryNode{file: models.RemoteFile{ID: "root", Name: "My Drive", MimeType: models.FolderMimeType, IsFolder: true}}
	return m
}

// AddFolder creates a folder and returns its id. It panics if parentID is
// unknown, which only happens in broken test setups.
func (m *MemoryStore) AddFolder(parentID, name string) string {
	id, err := m.CreateFolder(context.Background(), name, parentID)
	if err != nil {
		panic(err)
	}
	return id
}

// AddFile stores content as a file under parentID and returns its metadata.
func (m *MemoryStore) AddFile(parentID, name string, content []byte) models.RemoteFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.newFileLocked(name, content)
	m.attachLocked(parentID, &memoryNode{file: f, content: append([]byte(nil), content...)})
	return f
}

func (m *MemoryStore) newFileLocked(name string, content []byte) models.RemoteFile {
	m.nextID++
	sum := md5.Sum(content) // #nosec G401
	size := int64(len(content))
	return models.RemoteFile{
		ID:          fmt.Sprintf("file-%d", m.nextID),
		Name:        name,
		MimeType:    "application/pdf",
		Size:        &size,
		ContentHash: hex.EncodeToString(sum[:]),
	}
}

func (m *MemoryStore) attachLocked(parentID string, node *memoryNode) {
	parent, ok := m.nodes[parentID]
	if !ok || !parent.file.IsFolder {
		panic(fmt.Sprintf("memory store: unknown folder %q", parentID))
	}
	node.parent = parentID
	m.nodes[node.file.ID] = node
	parent.children = append(parent.children, node.file.ID)
}

// ListChildren implements DocumentStore.
func (m *MemoryStore) ListChildren(_ context.Context, folderID string) ([]models.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls[folderID]++
	if err := m.ListErrors[folderID]; err != nil {
		return nil, sorterror.NewCollaboratorError("list children", folderID, err)
	}
	parent, ok := m.nodes[folderID]
	if !ok {
		return nil, sorterror.NewCollaboratorError("list children", folderID, sorterror.ErrNotFound)
	}
	out := make([]models.RemoteFile, 0, len(parent.children))
	for _, id := range parent.children {
		out = append(out, m.nodes[id].file)
	}
	return out, nil
}

// GetMetadata implements DocumentStore.
func (m *MemoryStore) GetMetadata(_ context.Context, fileID string) (models.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[fileID]
	if !ok {
		return models.RemoteFile{}, sorterror.NewCollaboratorError("get metadata", fileID, sorterror.ErrNotFound)
	}
	return node.file, nil
}

// FetchContent implements DocumentStore.
func (m *MemoryStore) FetchContent(_ context.Context, fileID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchError != nil {
		return nil, sorterror.NewCollaboratorError("download", fileID, m.FetchError)
	}
	node, ok := m.nodes[fileID]
	if !ok || node.file.IsFolder {
		return nil, sorterror.NewCollaboratorError("download", fileID, sorterror.ErrNotFound)
	}
	return append([]byte(nil), node.content...), nil
}

// CreateFolder implements DocumentStore.
func (m *MemoryStore) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return "", sorterror.NewCollaboratorError("create folder", name, m.CreateError)
	}
	if parentID == "" {
		parentID = "root"
	}
	if parent, ok := m.nodes[parentID]; !ok || !parent.file.IsFolder {
		return "", sorterror.NewCollaboratorError("create folder", name, sorterror.ErrNotFound)
	}
	m.nextID++
	id := fmt.Sprintf("folder-%d", m.nextID)
	m.attachLocked(parentID, &memoryNode{file: models.RemoteFile{
		ID:       id,
		Name:     name,
		MimeType: models.FolderMimeType,
		IsFolder: true,
	}})
	return id, nil
}

// CopyFile implements DocumentStore.
func (m *MemoryStore) CopyFile(_ context.Context, fileID, newName, destFolderID string) (models.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CopyError != nil {
		return models.RemoteFile{}, sorterror.NewCollaboratorError("copy", fileID, m.CopyError)
	}
	src, ok := m.nodes[fileID]
	if !ok || src.file.IsFolder {
		return models.RemoteFile{}, sorterror.NewCollaboratorError("copy", fileID, sorterror.ErrNotFound)
	}
	if dest, ok := m.nodes[destFolderID]; !ok || !dest.file.IsFolder {
		return models.RemoteFile{}, sorterror.NewCollaboratorError("copy", fileID, sorterror.ErrNotFound)
	}
	f := m.newFileLocked(newName, src.content)
	f.MimeType = src.file.MimeType
	m.attachLocked(destFolderID, &memoryNode{file: f, content: src.content})
	return f, nil
}

// RenameFolder implements DocumentStore.
func (m *MemoryStore) RenameFolder(_ context.Context, folderID, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RenameError != nil {
		return sorterror.NewCollaboratorError("rename folder", folderID, m.RenameError)
	}
	node, ok := m.nodes[folderID]
	if !ok || !node.file.IsFolder {
		return sorterror.NewCollaboratorError("rename folder", folderID, sorterror.ErrNotFound)
	}
	node.file.Name = newName
	return nil
}

// FindFolder implements DocumentStore. Matching is exact, like a Drive
// name query.
func (m *MemoryStore) FindFolder(_ context.Context, name, parentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidates []string
	if parentID != "" {
		if parent, ok := m.nodes[parentID]; ok {
			candidates = parent.children
		}
	} else {
		candidates = m.allIDsLocked("root")
	}
	for _, id := range candidates {
		node := m.nodes[id]
		if node.file.IsFolder && node.file.Name == name {
			return id, nil
		}
	}
	return "", sorterror.NewCollaboratorError("find folder", name, sorterror.ErrNotFound)
}

// allIDsLocked walks the tree depth-first in insertion order.
func (m *MemoryStore) allIDsLocked(from string) []string {
	var ids []string
	for _, id := range m.nodes[from].children {
		ids = append(ids, id)
		ids = append(ids, m.allIDsLocked(id)...)
	}
	return ids
}

// Path returns the slash-joined folder names from the root down to id.
func (m *MemoryStore) Path(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var parts []string
	for node, ok := m.nodes[id]; ok && node.file.ID != "root"; node, ok = m.nodes[node.parent] {
		parts = append([]string{node.file.Name}, parts...)
	}
	return strings.Join(parts, "/")
}
