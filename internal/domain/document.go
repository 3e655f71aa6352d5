package domain

import (
	"strconv"
	"time"
)

// Well-known metadata keys carried on documents and chunks.
const (
	MetaTitle      = "title"
	MetaAuthor     = "author"
	MetaFileName   = "file_name"
	MetaFileSize   = "file_size"
	MetaFileType   = "file_type"
	MetaModifiedAt = "modified_at"
	MetaPages      = "num_pages"
	MetaParagraphs = "num_paragraphs"
	MetaCreated    = "creation_date"
	MetaStart      = "start_position"
	MetaEnd        = "end_position"
)

// SourceDocument is an ingested document. Its chunks are owned exclusively
// by it and are deleted with it.
type SourceDocument struct {
	ID         string
	Title      string
	Author     string
	FilePath   string
	FileType   string
	FileSize   int64
	Metadata   map[string]string
	UploadedBy string // weak reference, no ownership
	UploadedAt time.Time
	ChunkCount int
}

// Chunk is a bounded span of a document's cleaned text with its embedding.
// Start/End refer to the untrimmed window in the cleaned text; Content is
// stripped of surrounding whitespace.
type Chunk struct {
	DocumentID string
	Index      int
	Content    string
	Start      int
	End        int
	Metadata   map[string]string
	Vector     []float32
}

// RetrievedChunk is a search hit: a chunk plus its cosine distance to the
// query vector (smaller = more similar).
type RetrievedChunk struct {
	Chunk    Chunk
	Distance float64
}

// QueryLog records one retrieval-and-generation event. ChunkIDs are weak
// references; deleting a chunk may leave a dangling entry.
type QueryLog struct {
	ID             string
	Query          string
	Response       string
	ChunkIDs       []string
	ConversationID string
	ElapsedSeconds float64
	CreatedAt      time.Time
}

// ChunkID is the storage identity of a chunk within its document.
func ChunkID(documentID string, index int) string {
	return documentID + ":" + strconv.Itoa(index)
}

// Turn is a single conversation turn fed into prompt assembly.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}
