package sorterror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollaboratorError(t *testing.T) {
	original := errors.New("quota exceeded")
	err := NewCollaboratorError("list children", "folder-1", original)

	assert.Equal(t, "list children folder-1: quota exceeded", err.Error())
	assert.True(t, errors.Is(err, original))
}

func TestImportError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ImportError
		expected string
	}{
		{
			name:     "document level",
			err:      &ImportError{Source: "fix.json", Entry: -1, Reason: "invalid JSON", Err: errors.New("unexpected EOF")},
			expected: "manual mapping import from 'fix.json' failed: invalid JSON: unexpected EOF",
		},
		{
			name:     "entry level",
			err:      &ImportError{Source: "fix.json", Entry: 2, Reason: "missing file_name"},
			expected: "manual mapping import from 'fix.json' failed at entry 2: missing file_name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestStoreError(t *testing.T) {
	original := errors.New("permission denied")
	err := NewStoreError("save", "/tmp/cache.json", original)

	assert.Equal(t, "state save failed for '/tmp/cache.json': permission denied", err.Error())
	assert.Equal(t, original, err.Unwrap())
}

func TestExtractionError(t *testing.T) {
	withCause := &ExtractionError{Extractor: "pdftotext", Reason: "exit status 1", Err: errors.New("boom")}
	assert.Equal(t, "pdftotext: text extraction failed: exit status 1: boom", withCause.Error())

	plain := &ExtractionError{Extractor: "dslipak", Reason: "empty document"}
	assert.Equal(t, "dslipak: text extraction failed: empty document", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestIsNotFound(t *testing.T) {
	wrapped := NewCollaboratorError("find folder", "Chase", ErrNotFound)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(errors.New("other")))
}
