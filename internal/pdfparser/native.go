package pdfparser

import (
	"bytes"
	"fmt"
	"io"

	"fjacquet/statement-organizer/internal/sorterror"

	"github.com/dslipak/pdf"
)

// NativeExtractor reads PDFs in-process with github.com/dslipak/pdf.
type NativeExtractor struct{}

// NewNativeExtractor creates a NativeExtractor.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// Name implements PDFExtractor.
func (e *NativeExtractor) Name() string {
	return "dslipak"
}

// Extract implements PDFExtractor. The reader panics on some malformed
// inputs; those panics are reported as errors.
func (e *NativeExtractor) Extract(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &sorterror.ExtractionError{Extractor: e.Name(), Reason: fmt.Sprintf("reader panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "cannot open document", Err: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "cannot read text", Err: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "cannot read text", Err: err}
	}
	return buf.String(), nil
}
