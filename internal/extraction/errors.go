package extraction

import "fmt"

// EmptyInputError is returned when the resume text is empty or whitespace-only.
// No model call is made in that case.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "Resume text is empty"
}

// APICallError represents a failure talking to the model
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// MalformedOutputError means the model response was not a JSON object.
type MalformedOutputError struct {
	Response string
	Cause    error
}

// Message is the caller-facing description, without parser internals.
func (e *MalformedOutputError) Message() string {
	return "Model returned invalid JSON"
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Cause)
	}
	return e.Message()
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}
