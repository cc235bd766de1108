package resume

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/schemas"
)

// Kind classifies a pipeline failure for the transport layer.
type Kind string

// Failure kinds
const (
	KindNone                 Kind = ""
	KindUnsupportedMediaType Kind = "unsupported_media_type"
	KindUnableToExtract      Kind = "unable_to_extract"
	KindEmptyInput           Kind = "empty_input"
	KindMalformedModelOutput Kind = "malformed_model_output"
	KindSchemaViolation      Kind = "schema_violation"
	KindInternalFailure      Kind = "internal_failure"
)

// failureKinds lists every Kind a failed run can carry.
var failureKinds = []Kind{
	KindUnsupportedMediaType,
	KindUnableToExtract,
	KindEmptyInput,
	KindMalformedModelOutput,
	KindSchemaViolation,
	KindInternalFailure,
}

// ParseKind returns the failure Kind named s. KindNone is not a failure and
// is rejected.
func ParseKind(s string) (Kind, bool) {
	for _, k := range failureKinds {
		if string(k) == s {
			return k, true
		}
	}
	return KindNone, false
}

// PDFContentType is the only accepted upload content type.
const PDFContentType = "application/pdf"

// ErrUnableToExtract is returned when a PDF yields no text.
var ErrUnableToExtract = errors.New("Unable to extract text from PDF")

// UnsupportedMediaTypeError is returned for uploads that are not PDFs.
type UnsupportedMediaTypeError struct {
	ContentType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return "Only PDF files are allowed"
}

// InternalError wraps unexpected faults such as storage I/O.
type InternalError struct {
	Op    string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// KindOf classifies err. nil is KindNone; anything unrecognised is KindInternalFailure.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		mediaErr     *UnsupportedMediaTypeError
		emptyErr     *extraction.EmptyInputError
		malformedErr *extraction.MalformedOutputError
		schemaErr    *schemas.ValidationError
	)
	switch {
	case errors.As(err, &mediaErr):
		return KindUnsupportedMediaType
	case errors.Is(err, ErrUnableToExtract):
		return KindUnableToExtract
	case errors.As(err, &emptyErr):
		return KindEmptyInput
	case errors.As(err, &malformedErr):
		return KindMalformedModelOutput
	case errors.As(err, &schemaErr):
		return KindSchemaViolation
	default:
		return KindInternalFailure
	}
}

// PublicMessage returns the caller-safe message for err.
// Internal failures never expose their details.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindUnsupportedMediaType:
		return (&UnsupportedMediaTypeError{}).Error()
	case KindUnableToExtract:
		return ErrUnableToExtract.Error()
	case KindEmptyInput:
		return (&extraction.EmptyInputError{}).Error()
	case KindMalformedModelOutput:
		return (&extraction.MalformedOutputError{}).Message()
	case KindSchemaViolation:
		return "Schema validation failed"
	default:
		return "Internal server error"
	}
}
