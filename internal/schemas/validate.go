// Package schemas provides JSON Schema validation for extracted candidate profiles.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed candidate_profile.schema.json
var candidateProfileSchema []byte

var (
	profileSchema     *gojsonschema.Schema
	profileSchemaErr  error
	profileSchemaOnce sync.Once
)

func init() {
	gojsonschema.FormatCheckers.Add("email", emailChecker{validate: validator.New()})
}

// emailChecker backs the "email" format with the same rules used for request validation.
type emailChecker struct {
	validate *validator.Validate
}

// IsFormat implements gojsonschema.FormatChecker.
func (c emailChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	return c.validate.Var(s, "required,email") == nil
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// CandidateProfileSchema returns the canonical schema document.
func CandidateProfileSchema() []byte {
	out := make([]byte, len(candidateProfileSchema))
	copy(out, candidateProfileSchema)
	return out
}

func loadProfileSchema() (*gojsonschema.Schema, error) {
	profileSchemaOnce.Do(func() {
		profileSchema, profileSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(candidateProfileSchema))
		if profileSchemaErr != nil {
			profileSchemaErr = &SchemaLoadError{
				Path:    "candidate_profile.schema.json",
				Message: "failed to compile embedded schema",
				Cause:   profileSchemaErr,
			}
		}
	})
	return profileSchema, profileSchemaErr
}

// ValidateProfile checks a normalized JSON document against the candidate profile
// schema and decodes it. Every violation is reported, not only the first.
func ValidateProfile(doc []byte) (*types.CandidateProfile, error) {
	schema, err := loadProfileSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		// Document is not JSON at all
		return nil, &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if !result.Valid() {
		return nil, buildValidationError(result)
	}

	var profile types.CandidateProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode validated profile: %w", err)
	}
	return &profile, nil
}

// ValidateJSONFile validates a JSON file on disk against the candidate profile schema.
func ValidateJSONFile(jsonPath string) (*types.CandidateProfile, error) {
	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	data, err := os.ReadFile(jsonAbsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("JSON file not found: %s", jsonAbsPath)
		}
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	return ValidateProfile(data)
}

// buildValidationError converts gojsonschema results into field errors.
func buildValidationError(result *gojsonschema.Result) *ValidationError {
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   fieldPath(desc),
			Message: desc.Description(),
		})
	}

	return validationErr
}

// fieldPath names the offending field. Missing properties are reported at the
// path of the property itself rather than its parent object.
func fieldPath(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if field == "" {
		field = "(root)"
	}

	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok && prop != "" {
			if field == "(root)" {
				return prop
			}
			return field + "." + prop
		}
	}
	return field
}
