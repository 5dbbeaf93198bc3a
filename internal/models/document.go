// Package models defines core data structures for uploaded documents and generated test cases.
package models

// UploadedDocument is a file received from the user for one interaction.
type UploadedDocument struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Content   []byte `json:"-"`
	// Size is the size reported by the upload. When zero, len(Content) is used.
	Size int64 `json:"size"`
}

// NewUploadedDocument returns a document whose Size matches content.
func NewUploadedDocument(filename, mediaType string, content []byte) *UploadedDocument {
	return &UploadedDocument{
		Filename:  filename,
		MediaType: mediaType,
		Content:   content,
		Size:      int64(len(content)),
	}
}

// SizeBytes returns the larger of the reported size and the actual content length.
func (d *UploadedDocument) SizeBytes() int64 {
	n := int64(len(d.Content))
	if d.Size > n {
		return d.Size
	}
	return n
}
