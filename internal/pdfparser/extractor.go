// Package pdfparser extracts plain text from PDF documents for classification.
package pdfparser

import (
	"strings"

	"fjacquet/statement-organizer/internal/logging"
)

// PDFExtractor defines the interface for extracting text from PDF bytes.
// Implementations return an error instead of partial output.
type PDFExtractor interface {
	Extract(content []byte) (string, error)
	Name() string
}

// BestEffortExtractor tries each extractor in order and returns the first
// non-blank text. It never fails: when every extractor fails it returns "".
type BestEffortExtractor struct {
	extractors []PDFExtractor
	logger     logging.Logger
}

// NewBestEffortExtractor chains extractors in the given order.
func NewBestEffortExtractor(logger logging.Logger, extractors ...PDFExtractor) *BestEffortExtractor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &BestEffortExtractor{
		extractors: extractors,
		logger:     logger.WithField(logging.FieldComponent, "pdfparser"),
	}
}

// NewDefaultExtractor returns the production chain: the in-process reader
// first, then pdftotext when it is installed.
func NewDefaultExtractor(logger logging.Logger) *BestEffortExtractor {
	chain := []PDFExtractor{NewNativeExtractor()}
	if p := NewPdftotextExtractor(); p.Available() {
		chain = append(chain, p)
	}
	return NewBestEffortExtractor(logger, chain...)
}

// ExtractText returns the document text, or "" if it cannot be extracted.
func (b *BestEffortExtractor) ExtractText(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	for _, e := range b.extractors {
		text, err := e.Extract(content)
		if err != nil {
			b.logger.WithError(err).WithField("extractor", e.Name()).Debug("Text extraction failed, trying next extractor")
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	b.logger.Debug("No text could be extracted from document")
	return ""
}

// MockPDFExtractor implements PDFExtractor for testing purposes.
type MockPDFExtractor struct {
	MockText string
	MockErr  error
	Calls    int
}

// NewMockPDFExtractor creates a new MockPDFExtractor with the given mock data.
func NewMockPDFExtractor(mockText string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{MockText: mockText, MockErr: mockErr}
}

// Extract returns the predefined mock text or error.
func (e *MockPDFExtractor) Extract([]byte) (string, error) {
	e.Calls++
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}

// Name identifies the mock in log lines.
func (e *MockPDFExtractor) Name() string {
	return "mock"
}
