package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// IsRunStatus reports whether s is one of the recorded run statuses.
func IsRunStatus(s string) bool {
	return s == RunStatusSucceeded || s == RunStatusFailed
}

// ExtractionRun is the audit record of one resume extraction.
// Only outcome metadata is stored, never the extracted profile.
type ExtractionRun struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Model        string    `json:"model,omitempty"`
	TextLength   int       `json:"text_length"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunFilters narrows ListRunsFiltered results
type RunFilters struct {
	Status    string
	ErrorKind string
	Since     *time.Time
	Limit     int
}
