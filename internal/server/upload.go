package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hyperjump/testgen/internal/extract"
	"github.com/hyperjump/testgen/internal/models"
)

const (
	// uploadField is the multipart field carrying the document.
	uploadField = "file"
	// formOverhead is allowed on top of MaxFileSize for multipart framing.
	formOverhead = 1 << 20
	// maxMemory is kept in memory by ParseMultipartForm; the rest spills to disk.
	maxMemory = 32 << 20
)

var errMissingFile = errors.New("no file in upload")

// readUpload reads the multipart document from r. The extension must be in the upload
// allow-list. The declared label comes from the part's Content-Type and is refined by
// content sniffing when absent or generic.
func readUpload(w http.ResponseWriter, r *http.Request) (*models.UploadedDocument, error) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: request body over %d bytes", extract.ErrFileTooLarge, tooBig.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errMissingFile, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errMissingFile
	}
	defer func() { _ = file.Close() }()

	if !extract.IsAllowedExtension(header.Filename) {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedType, filepath.Ext(header.Filename))
	}
	if header.Size > extract.MaxFileSize {
		return &models.UploadedDocument{Filename: header.Filename, Size: header.Size}, nil
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	mediaType := refineMediaType(header.Header.Get("Content-Type"), content, header.Filename)
	return models.NewUploadedDocument(header.Filename, mediaType, content), nil
}

// refineMediaType keeps a specific declared label. An empty or octet-stream label is
// replaced by the sniffed type when that type is supported; otherwise an octet-stream
// label is kept and an empty one falls back to the extension mapping.
func refineMediaType(declared string, content []byte, filename string) string {
	declared = extract.NormalizeMediaType(declared)
	if declared != "" && declared != extract.MediaTypeOctetStream {
		return declared
	}
	sniffed := extract.NormalizeMediaType(mimetype.Detect(content).String())
	if sniffed != extract.MediaTypeOctetStream && extract.IsSupportedMediaType(sniffed) {
		return sniffed
	}
	if declared == extract.MediaTypeOctetStream {
		return declared
	}
	return extract.MediaTypeForExtension(filepath.Ext(filename))
}
