package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
)

const modelResponse = `{
	"firstname": "Jane",
	"lastname": "Doe",
	"email": "jane@example.com",
	"phone_no": "555-0100",
	"position": "Backend Engineer",
	"resume": "",
	"address_1": "1 Main St",
	"address_2": "",
	"address_3": "",
	"city": "Springfield",
	"short_description": "Go developer",
	"full_description": "",
	"skills": ["Go", "  ", 7, "PostgreSQL"],
	"companies": [
		{"company_name": "Acme", "position": "Engineer", "description": "APIs", "from_date": "2020-01-01", "to_date": "", "current_position": true}
	],
	"projects": []
}`

// stubText stands in for PDF parsing.
type stubText struct{ text string }

func (s stubText) ExtractText(context.Context, string) (string, error) {
	return s.text, nil
}

func newTestService(t *testing.T, client llm.Client, text string) *resume.Service {
	t.Helper()
	store, err := ingestion.NewTempStore(t.TempDir())
	require.NoError(t, err)
	return resume.NewService(store, stubText{text: text}, extraction.NewExtractor(client), resume.WithSource("cli"))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractFiles(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	client := llm.NewMockClient(modelResponse)
	svc := newTestService(t, client, "Jane Doe\njane@example.com")

	paths := []string{
		writeFile(t, inDir, "jane.pdf", "%PDF-1.4 stub"),
		writeFile(t, inDir, "jane-text.txt", "Jane   Doe\r\njane@example.com"),
		writeFile(t, inDir, "jane.docx", "not a pdf"),
	}

	var buf bytes.Buffer
	results := extractFiles(context.Background(), svc, paths, outDir, 2, observability.NewPrinter(&buf))
	require.Len(t, results, 3)

	assert.Empty(t, results[0].Kind)
	assert.Equal(t, filepath.Join(outDir, "jane.json"), results[0].Output)
	assert.Empty(t, results[1].Kind)
	assert.Equal(t, string(resume.KindUnsupportedMediaType), results[2].Kind)
	assert.Equal(t, "Only PDF files are allowed", results[2].Message)

	assert.Equal(t, filepath.Join(outDir, "jane-text.json"), results[1].Output)

	data, err := os.ReadFile(filepath.Join(outDir, "jane.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []any{"Go", "PostgreSQL"}, doc["skills"])
	assert.Equal(t, "jane.pdf", doc["resume"])
	company := doc["companies"].([]any)[0].(map[string]any)
	assert.Equal(t, "APIs", company["job_description"])

	assert.Equal(t, 2, client.Calls())
	assert.Contains(t, client.LastPrompt(), "Jane Doe")
	assert.Contains(t, buf.String(), "Jane Doe")
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "distinct stems",
			paths: []string{"a/jane.pdf", "b/john.txt"},
			want:  []string{"out/jane.json", "out/john.json"},
		},
		{
			name:  "same stem in different directories",
			paths: []string{"a/cv.pdf", "b/cv.pdf", "c/cv.txt"},
			want:  []string{"out/cv.json", "out/cv-2.json", "out/cv-3.json"},
		},
		{
			name:  "suffixed name already taken",
			paths: []string{"cv.pdf", "cv-2.pdf", "x/cv.pdf"},
			want:  []string{"out/cv.json", "out/cv-2.json", "out/cv-3.json"},
		},
		{
			name:  "case-insensitive clash",
			paths: []string{"CV.pdf", "cv.pdf"},
			want:  []string{"out/CV.json", "out/cv-2.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]string, len(tt.want))
			for i, w := range tt.want {
				want[i] = filepath.FromSlash(w)
			}
			assert.Equal(t, want, outputPaths(tt.paths, "out"))
		})
	}
}

func TestExtractFiles_SameNameInDifferentDirectories(t *testing.T) {
	base, outDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(base, "b"), 0o755))
	svc := newTestService(t, llm.NewMockClient(modelResponse), "Jane Doe")

	paths := []string{
		writeFile(t, filepath.Join(base, "a"), "cv.pdf", "%PDF"),
		writeFile(t, filepath.Join(base, "b"), "cv.pdf", "%PDF"),
	}
	results := extractFiles(context.Background(), svc, paths, outDir, 2, nil)

	require.Len(t, results, 2)
	assert.Empty(t, results[0].Kind)
	assert.Empty(t, results[1].Kind)
	assert.Equal(t, filepath.Join(outDir, "cv.json"), results[0].Output)
	assert.Equal(t, filepath.Join(outDir, "cv-2.json"), results[1].Output)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	for _, result := range results {
		data, err := os.ReadFile(result.Output)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "cv.pdf", doc["resume"])
	}
}

func TestExtractFiles_MalformedOutput(t *testing.T) {
	inDir := t.TempDir()
	svc := newTestService(t, llm.NewMockClient("not json"), "text")

	results := extractFiles(context.Background(), svc, []string{writeFile(t, inDir, "a.pdf", "x")}, t.TempDir(), 1, nil)
	require.Len(t, results, 1)
	assert.Equal(t, string(resume.KindMalformedModelOutput), results[0].Kind)
	assert.Equal(t, "Model returned invalid JSON", results[0].Message)
	assert.Empty(t, results[0].Output)
}

func TestExtractFiles_EmptyTextFile(t *testing.T) {
	inDir := t.TempDir()
	client := llm.NewMockClient(modelResponse)
	svc := newTestService(t, client, "")

	results := extractFiles(context.Background(), svc, []string{writeFile(t, inDir, "blank.txt", "  \n\t ")}, t.TempDir(), 0, nil)
	assert.Equal(t, string(resume.KindEmptyInput), results[0].Kind)
	assert.Equal(t, 0, client.Calls())
}

func TestExtractFiles_MissingFile(t *testing.T) {
	svc := newTestService(t, llm.NewMockClient(modelResponse), "text")

	results := extractFiles(context.Background(), svc, []string{filepath.Join(t.TempDir(), "nope.pdf")}, t.TempDir(), 1, nil)
	assert.Equal(t, string(resume.KindInternalFailure), results[0].Kind)
	assert.Contains(t, results[0].Message, "nope.pdf")
}

func TestExtractCommand_RequiresArgs(t *testing.T) {
	assert.Error(t, extractCmd.Args(extractCmd, nil))
	assert.NoError(t, extractCmd.Args(extractCmd, []string{"a.pdf"}))
}
