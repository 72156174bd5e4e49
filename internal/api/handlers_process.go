package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/config"
	"github.com/dgallion1/pdfgpt/internal/parser"
	"github.com/dgallion1/pdfgpt/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var validJobID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, tooLargeMessage(s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	summaryWords, err := parseWords(r.FormValue("summary_words"), "summary_words",
		config.SummaryWordsDefault, config.SummaryWordsMin, config.SummaryWordsMax)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	answerWords, err := parseWords(r.FormValue("answer_words"), "answer_words",
		config.AnswerWordsDefault, config.AnswerWordsMin, config.AnswerWordsMax)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, tooLargeMessage(s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	// A client-supplied request ID doubles as the job ID so the job can be
	// polled while this request is still running.
	jobID := strings.TrimSpace(r.Header.Get(middleware.RequestIDHeader))
	if jobID != "" && !validJobID.MatchString(jobID) {
		jsonError(w, "X-Request-Id must be 1-128 letters, digits, '.', '_' or '-'", http.StatusBadRequest)
		return
	}

	resp, err := s.pipeline.Process(r.Context(), pipeline.Request{
		JobID:        jobID,
		Filename:     filename,
		Data:         data,
		Question:     r.FormValue("question"),
		SummaryWords: summaryWords,
		AnswerWords:  answerWords,
	})
	if err != nil {
		s.log.Warn("process failed", "filename", filename, "error", err)
		switch {
		case errors.Is(err, pipeline.ErrDuplicateJob):
			jsonError(w, "job id already in use", http.StatusConflict)
		case errors.Is(err, pipeline.ErrUnsupportedFormat):
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		case errors.Is(err, pipeline.ErrInference):
			jsonError(w, "The language model is unavailable. Please try again later.", http.StatusBadGateway)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		default:
			jsonError(w, "processing failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Job-Id", resp.JobID)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.pipeline.Job(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// parseWords reads an optional word limit; blank means def.
func parseWords(raw, field string, def, lo, hi int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", field, lo, hi)
	}
	return n, nil
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("file exceeds max size (%d MB)", limit>>20)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
