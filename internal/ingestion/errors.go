package ingestion

import "fmt"

// ExtractionError represents a failure to read text out of a document
type ExtractionError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s (%s): %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s (%s)", e.Message, e.Path)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// StorageError represents a failure writing or removing a transient upload file
type StorageError struct {
	Op    string
	Path  string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
