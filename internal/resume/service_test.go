package resume

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/schemas"
)

const canonicalResponse = `{
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
	"full_description": "Builds services",
	"skills": ["Go", "PostgreSQL"],
	"companies": [
		{
			"company_name": "Acme",
			"current_position": true,
			"from_date": "2020-01-01",
			"to_date": "",
			"job_description": "APIs",
			"position": "Engineer"
		}
	],
	"projects": [
		{
			"title": "Parser",
			"description": "Resume parser",
			"technologies": ["Go"],
			"url": "",
			"image": ""
		}
	]
}`

// fakeText returns fixed text and remembers the paths it was asked to read.
type fakeText struct {
	mu    sync.Mutex
	text  string
	err   error
	panic bool
	paths []string
}

func (f *fakeText) ExtractText(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if f.panic {
		panic("corrupt xref")
	}
	return f.text, f.err
}

type memRecorder struct {
	mu   sync.Mutex
	runs []*db.ExtractionRun
	err  error
}

func (m *memRecorder) RecordRun(_ context.Context, run *db.ExtractionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.err
}

type harness struct {
	service  *Service
	client   *llm.MockClient
	text     *fakeText
	recorder *memRecorder
	dir      string
}

func newHarness(t *testing.T, response string) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := ingestion.NewTempStore(dir)
	require.NoError(t, err)

	h := &harness{
		client:   llm.NewMockClient(response),
		text:     &fakeText{text: "Jane Doe\nBackend Engineer"},
		recorder: &memRecorder{},
		dir:      dir,
	}
	h.service = NewService(store, h.text, extraction.NewExtractor(h.client),
		WithRecorder(h.recorder), WithModel("mock-model"))
	return h
}

func (h *harness) upload(contentType string) Upload {
	return Upload{Filename: "jane.pdf", ContentType: contentType, Body: strings.NewReader("%PDF-1.4 fake")}
}

func (h *harness) assertNoTempFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed")
}

func TestExtract_Success(t *testing.T) {
	h := newHarness(t, canonicalResponse)

	profile, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	require.NoError(t, err)

	assert.Equal(t, "jane.pdf", profile.Resume)
	assert.Equal(t, "Jane", profile.FirstName)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, profile.Skills)
	require.Len(t, profile.Companies, 1)
	assert.Equal(t, "Acme", profile.Companies[0].CompanyName)
	assert.True(t, profile.Companies[0].CurrentPosition)
	require.Len(t, profile.Projects, 1)
	assert.Equal(t, []string{"Go"}, profile.Projects[0].Technologies)

	assert.Contains(t, h.client.LastPrompt(), "Jane Doe\nBackend Engineer")
	require.Len(t, h.text.paths, 1)
	assert.True(t, strings.HasSuffix(h.text.paths[0], ".pdf"))
	h.assertNoTempFiles(t)

	require.Len(t, h.recorder.runs, 1)
	run := h.recorder.runs[0]
	assert.Equal(t, db.RunStatusSucceeded, run.Status)
	assert.Equal(t, "jane.pdf", run.Filename)
	assert.Equal(t, "mock-model", run.Model)
	assert.Equal(t, "http", run.Source)
	assert.Empty(t, run.ErrorKind)
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	for _, contentType := range []string{"text/plain", "image/png", "", "application/pdfx", "application/json"} {
		h := newHarness(t, canonicalResponse)

		_, err := h.service.Extract(context.Background(), h.upload(contentType))

		var mediaErr *UnsupportedMediaTypeError
		require.ErrorAs(t, err, &mediaErr, "content type %q", contentType)
		assert.Equal(t, "Only PDF files are allowed", err.Error())
		assert.Equal(t, KindUnsupportedMediaType, KindOf(err))
		assert.Empty(t, h.text.paths, "text extraction must not run")
		assert.Equal(t, 0, h.client.Calls(), "model must not be called")
		h.assertNoTempFiles(t)
	}
}

func TestExtract_AcceptsPDFWithParameters(t *testing.T) {
	h := newHarness(t, canonicalResponse)

	_, err := h.service.Extract(context.Background(), h.upload("Application/PDF; name=cv.pdf"))
	require.NoError(t, err)
}

func TestExtract_UnableToExtract(t *testing.T) {
	h := newHarness(t, canonicalResponse)
	h.text.text = "  \n\n\t "

	_, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	require.ErrorIs(t, err, ErrUnableToExtract)
	assert.Equal(t, KindUnableToExtract, KindOf(err))
	assert.Equal(t, 0, h.client.Calls())
	h.assertNoTempFiles(t)
}

func TestExtract_TextExtractionFailureIsInternal(t *testing.T) {
	h := newHarness(t, canonicalResponse)
	h.text.err = &ingestion.ExtractionError{Path: "x.pdf", Message: "failed to open PDF"}

	_, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	require.Error(t, err)
	assert.Equal(t, KindInternalFailure, KindOf(err))
	assert.Equal(t, "Internal server error", PublicMessage(err))
	h.assertNoTempFiles(t)
}

func TestExtract_PanicIsContainedAndCleanedUp(t *testing.T) {
	h := newHarness(t, canonicalResponse)
	h.text.panic = true

	profile, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	assert.Nil(t, profile)
	assert.Equal(t, KindInternalFailure, KindOf(err))
	assert.Contains(t, err.Error(), "corrupt xref")
	h.assertNoTempFiles(t)

	require.Len(t, h.recorder.runs, 1)
	assert.Equal(t, db.RunStatusFailed, h.recorder.runs[0].Status)
}

func TestExtract_MalformedModelOutput(t *testing.T) {
	h := newHarness(t, "Sure! Here's your data: {not json}")

	_, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	assert.Equal(t, KindMalformedModelOutput, KindOf(err))
	assert.Equal(t, "Model returned invalid JSON", PublicMessage(err))
	h.assertNoTempFiles(t)

	require.Len(t, h.recorder.runs, 1)
	assert.Equal(t, string(KindMalformedModelOutput), h.recorder.runs[0].ErrorKind)
}

func TestExtract_LegacyDescriptionBecomesJobDescription(t *testing.T) {
	response := strings.Replace(canonicalResponse, `"job_description": "APIs"`, `"description": "APIs"`, 1)
	h := newHarness(t, response)

	profile, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	require.NoError(t, err)
	assert.Equal(t, "APIs", profile.Companies[0].JobDescription)
}

func TestExtract_MissingEmailIsSchemaViolation(t *testing.T) {
	response := strings.Replace(canonicalResponse, `"email": "jane@example.com",`, "", 1)
	h := newHarness(t, response)

	_, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	assert.Equal(t, KindSchemaViolation, KindOf(err))

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	var fields []string
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "email")
	h.assertNoTempFiles(t)
}

func TestExtract_ModelResumeValueIsOverwritten(t *testing.T) {
	response := strings.Replace(canonicalResponse, `"resume": ""`, `"resume": "made-up.docx"`, 1)
	h := newHarness(t, response)

	profile, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	require.NoError(t, err)
	assert.Equal(t, "jane.pdf", profile.Resume)
}

func TestExtract_RecorderFailureDoesNotChangeResult(t *testing.T) {
	h := newHarness(t, canonicalResponse)
	h.recorder.err = errors.New("database down")

	core, logs := observer.New(zap.WarnLevel)
	h.service.logger = zap.New(core)

	profile, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.FirstName)
	assert.Equal(t, 1, logs.FilterMessage("failed to record extraction run").Len())
}

func TestExtractText(t *testing.T) {
	h := newHarness(t, canonicalResponse)

	profile, err := h.service.ExtractText(context.Background(), "Jane Doe", "local.pdf")
	require.NoError(t, err)
	assert.Equal(t, "local.pdf", profile.Resume)
	assert.Empty(t, h.text.paths)

	_, err = h.service.ExtractText(context.Background(), "   ", "blank.pdf")
	assert.Equal(t, KindEmptyInput, KindOf(err))
	assert.Equal(t, "Resume text is empty", PublicMessage(err))
}

func TestExtract_ConcurrentRequestsUseDistinctFiles(t *testing.T) {
	h := newHarness(t, canonicalResponse)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.Extract(context.Background(), h.upload("application/pdf"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range h.text.paths {
		assert.False(t, seen[p], "path reused: %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, 8)
	h.assertNoTempFiles(t)
}
