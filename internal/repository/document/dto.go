package document

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Hash field names shared with the search repository.
const (
	fieldContent    = "__content"
	fieldVector     = "__vector"
	fieldDocID      = "doc_id"
	fieldChunkIndex = "chunk_index"
	fieldStart      = "start"
	fieldEnd        = "end"
	fieldMetadata   = "metadata"
)

// buildDocFields converts a SourceDocument into a flat map[string]string for HSET.
func buildDocFields(doc *domain.SourceDocument) map[string]string {
	meta, _ := json.Marshal(doc.Metadata)
	return map[string]string{
		"title":       doc.Title,
		"author":      doc.Author,
		"file_path":   doc.FilePath,
		"file_type":   doc.FileType,
		"file_size":   strconv.FormatInt(doc.FileSize, 10),
		"uploaded_by": doc.UploadedBy,
		"uploaded_at": doc.UploadedAt.UTC().Format(time.RFC3339Nano),
		"uploaded_ts": strconv.FormatInt(doc.UploadedAt.Unix(), 10),
		"chunk_count": strconv.Itoa(doc.ChunkCount),
		"metadata":    string(meta),
	}
}

// parseDocFields converts a flat hash map back into a SourceDocument.
func parseDocFields(id string, m map[string]string) domain.SourceDocument {
	doc := domain.SourceDocument{
		ID:         id,
		Title:      m["title"],
		Author:     m["author"],
		FilePath:   m["file_path"],
		FileType:   m["file_type"],
		UploadedBy: m["uploaded_by"],
		Metadata:   map[string]string{},
	}
	doc.FileSize, _ = strconv.ParseInt(m["file_size"], 10, 64)
	doc.ChunkCount, _ = strconv.Atoi(m["chunk_count"])
	if t, err := time.Parse(time.RFC3339Nano, m["uploaded_at"]); err == nil {
		doc.UploadedAt = t
	}
	if raw := m["metadata"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &doc.Metadata)
	}
	return doc
}

// buildChunkFields converts a Chunk into a flat map[string]string for HSET.
func buildChunkFields(c *domain.Chunk) map[string]string {
	meta, _ := json.Marshal(c.Metadata)
	return map[string]string{
		fieldContent:    c.Content,
		fieldVector:     vectorToBytes(c.Vector),
		fieldDocID:      c.DocumentID,
		fieldChunkIndex: strconv.Itoa(c.Index),
		fieldStart:      strconv.Itoa(c.Start),
		fieldEnd:        strconv.Itoa(c.End),
		fieldMetadata:   string(meta),
	}
}

// parseChunkFields converts a flat hash map back into a Chunk.
func parseChunkFields(m map[string]string) domain.Chunk {
	c := domain.Chunk{
		DocumentID: m[fieldDocID],
		Content:    m[fieldContent],
		Metadata:   map[string]string{},
	}
	c.Index, _ = strconv.Atoi(m[fieldChunkIndex])
	c.Start, _ = strconv.Atoi(m[fieldStart])
	c.End, _ = strconv.Atoi(m[fieldEnd])
	if raw := m[fieldMetadata]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &c.Metadata)
	}
	if v := m[fieldVector]; v != "" {
		c.Vector = bytesToVector(v)
	}
	return c
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
