// Package parser extracts text and container metadata from uploaded documents.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Parsed holds extracted text and best-effort container metadata.
// Metadata values default to the empty string when the container omits them.
type Parsed struct {
	Text     string
	Metadata map[string]string
}

// FileParser extracts text and metadata from one document format.
type FileParser interface {
	Parse(path string) (Parsed, error)
}

// Parser dispatches to format-specific parsers by file extension.
type Parser struct {
	byType map[string]FileParser
}

// New creates a parser with the PDF and DOCX formats registered.
func New() *Parser {
	return &Parser{
		byType: map[string]FileParser{
			".pdf":  &PDFParser{},
			".docx": &DOCXParser{},
		},
	}
}

// Supports reports whether fileType has a registered parser.
func (p *Parser) Supports(fileType string) bool {
	_, ok := p.byType[normalizeType(fileType)]
	return ok
}

// Parse extracts text and metadata from the file at path. The type check
// happens before any I/O: an unregistered fileType fails without touching
// the file.
func (p *Parser) Parse(path, fileType string) (Parsed, error) {
	fp, ok := p.byType[normalizeType(fileType)]
	if !ok {
		return Parsed{}, fmt.Errorf("file type %q: %w", fileType, domain.ErrUnsupportedFormat)
	}
	parsed, err := fp.Parse(path)
	if err != nil {
		return Parsed{}, err
	}
	if parsed.Metadata == nil {
		parsed.Metadata = map[string]string{}
	}
	return parsed, nil
}

// BasicFileMetadata returns file-stat metadata for the stored file.
func BasicFileMetadata(path, fileType string) (map[string]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return map[string]string{
		domain.MetaFileName:   filepath.Base(path),
		domain.MetaFileSize:   strconv.FormatInt(st.Size(), 10),
		domain.MetaFileType:   normalizeType(fileType),
		domain.MetaModifiedAt: st.ModTime().UTC().Format(time.RFC3339),
	}, nil
}

func normalizeType(fileType string) string {
	t := strings.ToLower(strings.TrimSpace(fileType))
	if t != "" && !strings.HasPrefix(t, ".") {
		t = "." + t
	}
	return t
}
