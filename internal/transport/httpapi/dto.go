package httpapi

import (
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Error codes returned to clients.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeNotFound           errorCode = "not_found"
	codeDocumentNotFound   errorCode = "document_not_found"
	codeUnsupportedFormat  errorCode = "unsupported_format"
	codeParseFailed        errorCode = "parse_failed"
	codeEmbeddingProvider  errorCode = "embedding_provider_error"
	codeGenerationProvider errorCode = "generation_provider_error"
	codeSearchFailed       errorCode = "search_failed"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type documentResponse struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	FileType   string            `json:"file_type"`
	FileSize   int64             `json:"file_size"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	UploadedBy string            `json:"uploaded_by,omitempty"`
	UploadedAt time.Time         `json:"uploaded_at"`
	ChunkCount int               `json:"chunk_count"`
}

type documentListResponse struct {
	Items  []documentResponse `json:"items"`
	Total  int                `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

type chunkResponse struct {
	ID       string            `json:"id"`
	Index    int               `json:"index"`
	Content  string            `json:"content"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type chunkListResponse struct {
	Items []chunkResponse `json:"items"`
	Total int             `json:"total"`
}

type queryRequest struct {
	Question       string        `json:"question"`
	History        []historyTurn `json:"history,omitempty"`
	ConversationID string        `json:"conversation_id,omitempty"`
	TopK           int           `json:"top_k,omitempty"`
}

type historyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type retrievedChunkResponse struct {
	chunkResponse
	DocumentID string  `json:"document_id"`
	Distance   float64 `json:"distance"`
}

type queryResponse struct {
	Answer         string                   `json:"answer"`
	Chunks         []retrievedChunkResponse `json:"chunks"`
	ElapsedSeconds float64                  `json:"elapsed_seconds"`
}

type queryLogResponse struct {
	ID             string    `json:"id"`
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	ChunkIDs       []string  `json:"chunk_ids,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	CreatedAt      time.Time `json:"created_at"`
}

type queryLogListResponse struct {
	Items  []queryLogResponse `json:"items"`
	Total  int                `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d *domain.SourceDocument) documentResponse {
	return documentResponse{
		ID:         d.ID,
		Title:      d.Title,
		Author:     d.Author,
		FileType:   d.FileType,
		FileSize:   d.FileSize,
		Metadata:   d.Metadata,
		UploadedBy: d.UploadedBy,
		UploadedAt: d.UploadedAt,
		ChunkCount: d.ChunkCount,
	}
}

func chunkToResponse(c *domain.Chunk) chunkResponse {
	return chunkResponse{
		ID:       domain.ChunkID(c.DocumentID, c.Index),
		Index:    c.Index,
		Content:  c.Content,
		Start:    c.Start,
		End:      c.End,
		Metadata: c.Metadata,
	}
}

func retrievedToResponse(rc *domain.RetrievedChunk) retrievedChunkResponse {
	return retrievedChunkResponse{
		chunkResponse: chunkToResponse(&rc.Chunk),
		DocumentID:    rc.Chunk.DocumentID,
		Distance:      rc.Distance,
	}
}

func queryLogToResponse(l *domain.QueryLog) queryLogResponse {
	return queryLogResponse{
		ID:             l.ID,
		Query:          l.Query,
		Response:       l.Response,
		ChunkIDs:       l.ChunkIDs,
		ConversationID: l.ConversationID,
		ElapsedSeconds: l.ElapsedSeconds,
		CreatedAt:      l.CreatedAt,
	}
}

func turnsFromRequest(turns []historyTurn) []domain.Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]domain.Turn, len(turns))
	for i, t := range turns {
		out[i] = domain.Turn{Role: t.Role, Content: t.Content}
	}
	return out
}
