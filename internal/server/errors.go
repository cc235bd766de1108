package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/schemas"
)

// schemaErrorDetail is the detail body of a 422 schema violation.
type schemaErrorDetail struct {
	Message string               `json:"message"`
	Errors  []schemas.FieldError `json:"errors"`
}

// HTTPStatus returns the appropriate HTTP status code for a pipeline error
func HTTPStatus(err error) int {
	switch resume.KindOf(err) {
	case resume.KindUnsupportedMediaType, resume.KindUnableToExtract:
		return http.StatusBadRequest
	case resume.KindEmptyInput, resume.KindMalformedModelOutput, resume.KindSchemaViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail returns the caller-facing detail for err: a plain message, or
// the itemized violations for a schema failure.
func errorDetail(err error) any {
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		return schemaErrorDetail{
			Message: resume.PublicMessage(err),
			Errors:  validationErr.Errors,
		}
	}
	return resume.PublicMessage(err)
}
