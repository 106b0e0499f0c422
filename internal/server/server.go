// Package server is the HTTP JSON transport over the service layer. It owns
// request validation and error-to-status mapping; the core never sees HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// maxUploadBytes caps uploaded documents at 10 MB.
const maxUploadBytes = 10 << 20

const maxQuestionLength = 1000

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Server exposes the core over HTTP.
type Server struct {
	svc        *service.Service
	uploadsDir string
}

func New(svc *service.Service, uploadsDir string) (*Server, error) {
	if err := os.MkdirAll(uploadsDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Server{svc: svc, uploadsDir: uploadsDir}, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /process-url", s.handleProcessURL)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /session/{id}/technical", s.handleSessionInfo)
	mux.HandleFunc("DELETE /session/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeClientError(w, "file too large or malformed form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeClientError(w, "missing file field")
		return
	}
	defer file.Close()

	name := unsafeFilenameChars.ReplaceAllString(filepath.Base(header.Filename), "_")
	if name == "" || name == "." {
		writeClientError(w, "no filename provided")
		return
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		writeClientError(w, "only PDF files are supported")
		return
	}

	path := filepath.Join(s.uploadsDir, name)
	dst, err := os.Create(path)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		_ = os.Remove(path)
		writeError(w, err)
		return
	}
	dst.Close()

	result, err := s.svc.IngestFile(r.Context(), path)
	if err != nil {
		// Failed ingestion must not leave the uploaded artifact behind.
		_ = os.Remove(path)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type processURLRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleProcessURL(w http.ResponseWriter, r *http.Request) {
	var req processURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClientError(w, "invalid json")
		return
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		writeClientError(w, "url is required")
		return
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		writeClientError(w, "url must start with http:// or https://")
		return
	}
	if u, err := url.Parse(rawURL); err != nil || u.Host == "" {
		writeClientError(w, "invalid url")
		return
	}
	if len(rawURL) > 2048 {
		writeClientError(w, "url too long")
		return
	}

	result, err := s.svc.IngestURL(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type askRequest struct {
	SessionID           string   `json:"session_id"`
	Question            string   `json:"question"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	UseRelevanceFilter  bool     `json:"use_relevance_filter,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClientError(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeClientError(w, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeClientError(w, "question is required")
		return
	}
	if len(req.Question) > maxQuestionLength {
		writeClientError(w, "question too long")
		return
	}

	got, err := s.svc.Ask(r.Context(), req.SessionID, req.Question, service.AskOptions{
		Threshold:          req.SimilarityThreshold,
		UseRelevanceFilter: req.UseRelevanceFilter,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.SessionInfo(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSession(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.ListSessions()
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writeError maps core error kinds to statuses without leaking upstream
// service error text.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "session not found"})
	case errors.Is(err, domain.ErrInvalidThreshold):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "similarity_threshold must be between 0 and 1"})
	case errors.Is(err, domain.ErrNoExtractableText):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "no text could be extracted from the source"})
	case errors.Is(err, domain.ErrEmbeddingService), errors.Is(err, domain.ErrLLMService):
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream model service unavailable, please retry"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}

func writeClientError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
