// Package resume runs the extraction pipeline for one uploaded resume:
// store, extract text, prompt the model, normalize and validate.
package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/normalize"
	"github.com/jonathan/resume-parser/internal/schemas"
	"github.com/jonathan/resume-parser/internal/types"
)

// Upload is one resume file received from a caller.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProfileExtractor turns resume text into an unvalidated JSON object.
type ProfileExtractor interface {
	Extract(ctx context.Context, resumeText string) (*normalize.Value, error)
}

// RunRecorder persists audit records. Failures are logged and ignored.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *db.ExtractionRun) error
}

// Service orchestrates the extraction pipeline.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store     *ingestion.TempStore
	text      ingestion.TextExtractor
	extractor ProfileExtractor
	recorder  RunRecorder
	logger    *zap.Logger
	model     string
	source    string
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder enables the audit log.
func WithRecorder(r RunRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithModel sets the model name stored in audit records.
func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

// WithSource tags audit records with the entry point, e.g. "http" or "cli".
func WithSource(source string) Option {
	return func(s *Service) { s.source = source }
}

// NewService creates a Service.
func NewService(store *ingestion.TempStore, text ingestion.TextExtractor, extractor ProfileExtractor, opts ...Option) *Service {
	s := &Service{
		store:     store,
		text:      text,
		extractor: extractor,
		logger:    zap.NewNop(),
		source:    "http",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs the full pipeline for an uploaded PDF.
// The temporary copy of the upload is removed on every exit path, and a
// panic in any step is returned as an InternalError.
func (s *Service) Extract(ctx context.Context, upload Upload) (profile *types.CandidateProfile, err error) {
	start := s.now()
	textLength := 0
	defer func() {
		if r := recover(); r != nil {
			profile, err = nil, &InternalError{Op: "extract", Cause: fmt.Errorf("panic: %v", r)}
		}
		s.record(ctx, upload.Filename, textLength, start, err)
	}()

	if !IsPDF(upload.ContentType) {
		return nil, &UnsupportedMediaTypeError{ContentType: upload.ContentType}
	}

	file, err := s.store.Save(upload.Body, ".pdf")
	if err != nil {
		return nil, &InternalError{Op: "store upload", Cause: err}
	}
	defer func() {
		if rmErr := file.Remove(); rmErr != nil {
			s.logger.Warn("failed to remove temp file", zap.String("path", file.Path), zap.Error(rmErr))
		}
	}()

	raw, err := s.text.ExtractText(ctx, file.Path)
	if err != nil {
		return nil, &InternalError{Op: "extract text", Cause: err}
	}

	text := ingestion.CleanText(raw)
	textLength = len(text)
	if text == "" {
		return nil, ErrUnableToExtract
	}

	return s.fromText(ctx, text, upload.Filename)
}

// ExtractText runs the model, normalize and validate steps for text that
// was already extracted, e.g. by the CLI.
func (s *Service) ExtractText(ctx context.Context, text, filename string) (profile *types.CandidateProfile, err error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			profile, err = nil, &InternalError{Op: "extract", Cause: fmt.Errorf("panic: %v", r)}
		}
		s.record(ctx, filename, len(text), start, err)
	}()
	return s.fromText(ctx, text, filename)
}

func (s *Service) fromText(ctx context.Context, text, filename string) (*types.CandidateProfile, error) {
	doc, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	// resume is set before normalization so it is validated like any other field
	if obj, ok := doc.Object(); ok {
		obj.Set("resume", normalize.NewString(filename))
	}

	return ValidateDocument(normalize.Normalize(doc))
}

// ValidateDocument checks a normalized document against the canonical schema.
func ValidateDocument(doc *normalize.Value) (*types.CandidateProfile, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &InternalError{Op: "encode document", Cause: err}
	}
	return schemas.ValidateProfile(data)
}

func (s *Service) record(ctx context.Context, filename string, textLength int, start time.Time, err error) {
	kind := KindOf(err)
	elapsed := s.now().Sub(start)

	fields := []zap.Field{
		zap.String("filename", filename),
		zap.Int("text_length", textLength),
		zap.Duration("duration", elapsed),
	}
	switch kind {
	case KindNone:
		s.logger.Info("resume extracted", fields...)
	case KindInternalFailure:
		s.logger.Error("resume extraction failed", append(fields, zap.String("kind", string(kind)), zap.Error(err))...)
	default:
		s.logger.Info("resume rejected", append(fields, zap.String("kind", string(kind)), zap.Error(err))...)
	}

	if s.recorder == nil {
		return
	}

	run := &db.ExtractionRun{
		Filename:   filename,
		Source:     s.source,
		Status:     db.RunStatusSucceeded,
		Model:      s.model,
		TextLength: textLength,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		run.Status = db.RunStatusFailed
		run.ErrorKind = string(kind)
		run.ErrorMessage = PublicMessage(err)
	}

	// the request context may already be cancelled once the response is written
	if recErr := s.recorder.RecordRun(context.WithoutCancel(ctx), run); recErr != nil {
		s.logger.Warn("failed to record extraction run", zap.Error(recErr))
	}
}

// IsPDF reports whether a declared content type is application/pdf.
// Parameters such as charset are ignored.
func IsPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, PDFContentType)
}
