package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDocument = `{
	"firstname": "Ada", "lastname": "Lovelace", "email": "ada@example.com",
	"phone_no": "", "position": "Analyst", "resume": "ada.pdf",
	"address_1": "", "address_2": null, "address_3": null, "city": "London",
	"short_description": "", "full_description": "",
	"skills": ["Mathematics"],
	"companies": [{"company_name": "AE Ltd", "position": "Analyst", "job_description": "", "from_date": "1842-01-01", "to_date": "", "current_position": false}],
	"projects": []
}`

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		content   string
		normalize bool
		wantErr   string
		wantOut   string
	}{
		{
			name:    "valid",
			content: validDocument,
			wantOut: "Validation passed",
		},
		{
			name:    "missing email",
			content: `{"firstname": "Ada"}`,
			wantErr: "validation failed",
			wantOut: "SCHEMA VALIDATION FAILED",
		},
		{
			name:    "not json",
			content: `{oops`,
			wantErr: "invalid JSON",
		},
		{
			name:    "raw model output fails without normalize",
			content: `{"firstname": "Ada", "lastname": "L", "email": "ada@example.com", "phone_no": "", "position": "", "resume": "a.pdf", "address_1": "", "city": "", "short_description": "", "full_description": "", "skills": ["Go", "", 42], "companies": [], "projects": []}`,
			wantErr: "validation failed",
			wantOut: "skills",
		},
		{
			name:      "raw model output passes with normalize",
			content:   `{"firstname": "Ada", "lastname": "L", "email": "ada@example.com", "phone_no": "", "position": "", "resume": "a.pdf", "address_1": "", "city": "", "short_description": "", "full_description": "", "skills": ["Go", "", 42], "companies": [], "projects": []}`,
			normalize: true,
			wantOut:   "Validation passed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "doc.json", tt.content)
			var out bytes.Buffer

			err := validateFile(path, tt.normalize, &out)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func TestValidateFile_Missing(t *testing.T) {
	err := validateFile(filepath.Join(t.TempDir(), "missing.json"), false, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
