// Package httpapi exposes the ingestion and query services over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
	queryuc "github.com/kailas-cloud/ragdex/internal/usecase/query"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers over the usecase services.
type Server struct {
	documents      *ingestuc.Service
	queries        *queryuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *ingestuc.Service,
	queries *queryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	maxUploadBytes int64,
) *Server {
	s := &Server{
		documents:      documents,
		queries:        queries,
		health:         health,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, codeUnsupportedFormat),
		sentinelHandler(domain.ErrInvalidChunking, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrParseFailed, http.StatusUnprocessableEntity, codeParseFailed),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, codeGenerationProvider),
		sentinelHandler(domain.ErrSearchFailed, http.StatusBadGateway, codeSearchFailed),
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/documents", s.createDocument)
	r.Get("/documents", s.listDocuments)
	r.Get("/documents/{id}", s.getDocument)
	r.Get("/documents/{id}/chunks", s.getDocumentChunks)
	r.Delete("/documents/{id}", s.deleteDocument)
	r.Post("/documents/{id}/reindex", s.reindexDocument)
	r.Post("/query", s.query)
	r.Get("/querylogs", s.listQueryLogs)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

// createDocument handles POST /documents: multipart upload plus ingestion.
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	var extra map[string]string
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "metadata must be a JSON object of strings")
			return
		}
	}

	doc, err := s.documents.Ingest(r.Context(), ingestuc.UploadRequest{
		FileName:   header.Filename,
		File:       file,
		Title:      r.FormValue("title"),
		Author:     r.FormValue("author"),
		UploadedBy: r.FormValue("uploaded_by"),
		Metadata:   extra,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentToResponse(&doc))
}

// listDocuments handles GET /documents.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)

	docs, total, err := s.documents.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}

	writeJSON(w, http.StatusOK, documentListResponse{
		Items:  items,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// getDocument handles GET /documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// getDocumentChunks handles GET /documents/{id}/chunks.
func (s *Server) getDocumentChunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := s.documents.Chunks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]chunkResponse, len(chunks))
	for i := range chunks {
		items[i] = chunkToResponse(&chunks[i])
	}

	writeJSON(w, http.StatusOK, chunkListResponse{Items: items, Total: len(items)})
}

// deleteDocument handles DELETE /documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reindexDocument handles POST /documents/{id}/reindex.
func (s *Server) reindexDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Reindex(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// query handles POST /query.
func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}

	answer, err := s.queries.Answer(r.Context(), queryuc.Request{
		Question:       req.Question,
		History:        turnsFromRequest(req.History),
		ConversationID: req.ConversationID,
		TopK:           req.TopK,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	chunks := make([]retrievedChunkResponse, len(answer.Chunks))
	for i := range answer.Chunks {
		chunks[i] = retrievedToResponse(&answer.Chunks[i])
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:         answer.Response,
		Chunks:         chunks,
		ElapsedSeconds: answer.ElapsedSeconds,
	})
}

// listQueryLogs handles GET /querylogs.
func (s *Server) listQueryLogs(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)

	logs, total, err := s.queries.Logs(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]queryLogResponse, len(logs))
	for i := range logs {
		items[i] = queryLogToResponse(&logs[i])
	}

	writeJSON(w, http.StatusOK, queryLogListResponse{
		Items:  items,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrUnsupportedFormat,
		domain.ErrParseFailed,
		domain.ErrInvalidChunking,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProvider,
		domain.ErrGenerationProvider,
		domain.ErrSearchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
