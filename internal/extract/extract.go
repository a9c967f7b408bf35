package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ErrUnsupportedType marks documents the pipeline cannot ingest.
// Supported inputs are PDF and plain text (including markdown).
var ErrUnsupportedType = errors.New("unsupported document type")

// Result is the extracted text plus what was learned while sniffing.
type Result struct {
	Text string

	// Kind is "pdf" or "text"; it becomes the chunk metadata type.
	Kind string

	// Pages is the page count for PDFs, zero otherwise.
	Pages int
}

// Extract determines the true document type from the bytes first (the
// declared mime type and extension are only hints) and pulls plain text
// out of it.
func Extract(filename, mimeType string, data []byte) (Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mt := strings.ToLower(strings.TrimSpace(mimeType))

	if len(data) == 0 {
		return Result{}, fmt.Errorf("empty file: name=%s mime=%s", filename, mimeType)
	}

	if isPDF(data) {
		return extractPDF(data)
	}

	if isProbablyText(data) || mt == "text/plain" || mt == "text/markdown" || ext == ".txt" || ext == ".md" || ext == ".markdown" {
		return Result{Text: string(data), Kind: "text"}, nil
	}

	// The file claims PDF but lacks the %PDF header.
	if mt == "application/pdf" || ext == ".pdf" {
		return Result{}, fmt.Errorf("file claims pdf but missing %%PDF header: name=%s mime=%s: %w", filename, mimeType, ErrUnsupportedType)
	}

	return Result{}, fmt.Errorf("name=%s ext=%s mime=%s: %w", filename, ext, mimeType, ErrUnsupportedType)
}

func isPDF(b []byte) bool {
	// PDF starts with "%PDF-"
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isProbablyText(b []byte) bool {
	// Heuristic: most bytes printable or whitespace, no NULs.
	sample := b[:min(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func extractPDF(data []byte) (Result, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return Result{}, fmt.Errorf("pdf read: %w", err)
	}
	return Result{
		Text:  collapseWhitespace(string(b)),
		Kind:  "pdf",
		Pages: r.NumPage(),
	}, nil
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
