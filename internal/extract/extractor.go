// Package extract provides text extraction from uploaded documents.
package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/testgen/internal/models"
)

// MaxFileSize is the largest accepted document (200 MiB).
const MaxFileSize int64 = 200 << 20

type strategy struct {
	format  string
	extract func(content []byte) (string, error)
}

// strategies maps a normalized media type to its extraction routine.
var strategies = map[string]strategy{
	MediaTypePlain:       {"text", extractPlain},
	MediaTypeCSV:         {"text", extractPlain},
	MediaTypeOctetStream: {"text", extractPlain},
	MediaTypePCAP:        {"PCAP", extractPCAP},
	MediaTypePDF:         {"PDF", extractPDF},
	MediaTypeDOCX:        {"DOCX", extractDOCX},
	MediaTypePPTX:        {"PPTX", extractPPTX},
}

// Extractor extracts plain text from uploaded documents.
type Extractor struct {
	maxSize int64
}

// NewExtractor returns a new Extractor enforcing MaxFileSize.
func NewExtractor() *Extractor {
	return &Extractor{maxSize: MaxFileSize}
}

// Extract returns the text content of doc. It dispatches on the declared media type only.
// Errors are ErrFileTooLarge, ErrUnsupportedType (both wrapped) or *ExtractionError.
func (e *Extractor) Extract(doc *models.UploadedDocument) (string, error) {
	if doc.SizeBytes() > e.maxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, doc.SizeBytes(), e.maxSize)
	}
	mt := NormalizeMediaType(doc.MediaType)
	s, ok := strategies[mt]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, doc.MediaType)
	}
	return run(s, doc.Content)
}

// ReadDocument reads the local file at path as an upload, labelled by its extension.
// A file over MaxFileSize is not read: the document carries only its size, so
// Extract rejects it with ErrFileTooLarge.
func ReadDocument(path string) (*models.UploadedDocument, error) {
	mt := MediaTypeForExtension(filepath.Ext(path))
	if mt == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return &models.UploadedDocument{Filename: filepath.Base(path), MediaType: mt, Size: info.Size()}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return models.NewUploadedDocument(filepath.Base(path), mt, content), nil
}

// run calls the strategy and converts both errors and panics from format libraries
// into *ExtractionError.
func run(s strategy, content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Format: s.format, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	text, err = s.extract(content)
	if err != nil {
		return "", &ExtractionError{Format: s.format, Err: err}
	}
	return text, nil
}
