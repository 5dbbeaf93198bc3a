package generator

import (
	"errors"
	"fmt"

	"github.com/hyperjump/testgen/internal/extract"
	"github.com/hyperjump/testgen/internal/llm"
)

// Kind names the category of an action result.
type Kind string

// Result kinds shared by every surface.
const (
	KindOK               Kind = "ok"
	KindFileTooLarge     Kind = "file_too_large"
	KindUnsupportedType  Kind = "unsupported_type"
	KindExtractionError  Kind = "extraction_error"
	KindServiceError     Kind = "service_error"
	KindEmptyParseResult Kind = "empty_parse_result"
	KindMissingInput     Kind = "missing_input"
	KindInternal         Kind = "internal"
)

// Severity is how an outcome is presented.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// User-facing messages.
const (
	MsgUploaded        = "Document uploaded successfully!"
	MsgFileTooLarge    = "File exceeds 200MB limit."
	MsgUnsupportedType = "Unsupported file type."
	MsgEmptyParse      = "No valid test cases parsed. Try a clearer prompt."
	MsgMissingInput    = "Please upload a file and enter a prompt before generating."
)

// Outcome is the user-visible result of an upload or generate action.
type Outcome struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// IsError reports whether the outcome is a failure rather than a success or warning.
func (o Outcome) IsError() bool {
	return o.Severity == SeverityError
}

// UploadedOutcome is the outcome of a successful upload.
func UploadedOutcome() Outcome {
	return Outcome{Kind: KindOK, Severity: SeveritySuccess, Message: MsgUploaded}
}

// GeneratedOutcome is the outcome of a generate action that produced n test cases.
func GeneratedOutcome(n int) Outcome {
	noun := "test cases"
	if n == 1 {
		noun = "test case"
	}
	return Outcome{Kind: KindOK, Severity: SeveritySuccess, Message: fmt.Sprintf("Generated %d %s.", n, noun)}
}

// Classify maps an action error to its outcome. A nil error is KindOK with no message.
func Classify(err error) Outcome {
	var (
		extErr *extract.ExtractionError
		svcErr *llm.ServiceError
	)
	switch {
	case err == nil:
		return Outcome{Kind: KindOK, Severity: SeveritySuccess}
	case errors.Is(err, extract.ErrFileTooLarge):
		return Outcome{Kind: KindFileTooLarge, Severity: SeverityError, Message: MsgFileTooLarge}
	case errors.Is(err, extract.ErrUnsupportedType):
		return Outcome{Kind: KindUnsupportedType, Severity: SeverityError, Message: MsgUnsupportedType}
	case errors.As(err, &extErr):
		return Outcome{Kind: KindExtractionError, Severity: SeverityError, Message: "Error reading file: " + extErr.Err.Error()}
	case errors.As(err, &svcErr):
		return Outcome{Kind: KindServiceError, Severity: SeverityError, Message: "Failed to generate test cases: " + svcErr.Err.Error()}
	case errors.Is(err, ErrEmptyParseResult):
		return Outcome{Kind: KindEmptyParseResult, Severity: SeverityWarning, Message: MsgEmptyParse}
	case errors.Is(err, ErrMissingInstruction), errors.Is(err, ErrNoDocument):
		return Outcome{Kind: KindMissingInput, Severity: SeverityWarning, Message: MsgMissingInput}
	default:
		return Outcome{Kind: KindInternal, Severity: SeverityError, Message: "Unexpected error: " + err.Error()}
	}
}
