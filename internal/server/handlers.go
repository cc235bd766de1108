package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/resume"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to disk.
const multipartMemory = 1 << 20

// handleExtract accepts a multipart upload in field "file" and returns the
// extracted CandidateProfile.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Expected a multipart form with a 'file' field")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Expected a multipart form with a 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	profile, err := s.extractor.Extract(r.Context(), resume.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("extraction failed", zap.String("filename", header.Filename), zap.Error(err))
		}
		s.errorResponse(w, status, errorDetail(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

// handleListExtractions lists recent extraction runs.
// Query: limit (1-500), status, kind, since (RFC 3339).
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.errorResponse(w, http.StatusNotFound, "audit log not configured")
		return
	}

	q := r.URL.Query()
	var filters db.RunFilters

	if v := q.Get("status"); v != "" {
		if !db.IsRunStatus(v) {
			s.errorResponse(w, http.StatusBadRequest,
				fmt.Sprintf("status must be %q or %q", db.RunStatusSucceeded, db.RunStatusFailed))
			return
		}
		filters.Status = v
	}
	if v := q.Get("kind"); v != "" {
		kind, ok := resume.ParseKind(v)
		if !ok {
			s.errorResponse(w, http.StatusBadRequest, "kind is not a known error kind")
			return
		}
		filters.ErrorKind = string(kind)
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > db.MaxListLimit {
			s.errorResponse(w, http.StatusBadRequest,
				fmt.Sprintf("limit must be an integer between 1 and %d", db.MaxListLimit))
			return
		}
		filters.Limit = limit
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filters.Since = &since
	}

	runs, err := s.runs.ListRunsFiltered(r.Context(), filters)
	if err != nil {
		s.logger.Error("failed to list extraction runs", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetExtraction returns one extraction run by id.
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.errorResponse(w, http.StatusNotFound, "audit log not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get extraction run", zap.Stringer("id", id), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "extraction not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}
