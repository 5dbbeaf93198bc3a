package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge is returned when a document exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrUnsupportedType is returned for media types outside the supported set.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// ExtractionError wraps a failure raised while reading a supported format.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
