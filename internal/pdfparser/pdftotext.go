package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"fjacquet/statement-organizer/internal/sorterror"
)

// runCommand is swapped in tests.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- fixed binary, temp file argument
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// PdftotextExtractor shells out to the poppler pdftotext tool.
type PdftotextExtractor struct {
	Binary  string
	Timeout time.Duration
}

// NewPdftotextExtractor creates an extractor using "pdftotext" from PATH.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{Binary: "pdftotext", Timeout: 30 * time.Second}
}

// Name implements PDFExtractor.
func (e *PdftotextExtractor) Name() string {
	return "pdftotext"
}

// Available reports whether the binary can be found.
func (e *PdftotextExtractor) Available() bool {
	_, err := exec.LookPath(e.Binary)
	return err == nil
}

// Extract implements PDFExtractor. The content is written to a temporary
// file because pdftotext needs a seekable input.
func (e *PdftotextExtractor) Extract(content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "cannot create temporary file", Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "cannot write temporary file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "cannot write temporary file", Err: err}
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := runCommand(ctx, e.Binary, "-layout", "-q", tmp.Name(), "-")
	if err != nil {
		return "", &sorterror.ExtractionError{Extractor: e.Name(), Reason: "command failed", Err: err}
	}
	return string(out), nil
}
