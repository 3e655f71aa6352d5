package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	docx "github.com/fumiama/go-docx"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// DOCXParser extracts paragraph text and core properties from DOCX files.
type DOCXParser struct{}

// Parse reads the DOCX at path, joining paragraph texts with newlines.
func (p *DOCXParser) Parse(path string) (Parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parsed{}, fmt.Errorf("docx %s: %w: %w", path, err, domain.ErrParseFailed)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Parsed{}, fmt.Errorf("docx %s: %w: %w", path, err, domain.ErrParseFailed)
	}

	var lines []string
	paragraphs := 0
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paragraphs++
		lines = append(lines, para.String())
	}

	meta := coreProperties(data)
	meta[domain.MetaParagraphs] = strconv.Itoa(paragraphs)

	return Parsed{Text: strings.Join(lines, "\n"), Metadata: meta}, nil
}

// coreProps mirrors docProps/core.xml.
type coreProps struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

// coreProperties reads docProps/core.xml from the OOXML container.
// Best-effort: a document without core properties yields empty strings.
func coreProperties(data []byte) map[string]string {
	meta := map[string]string{
		domain.MetaTitle:      "",
		domain.MetaAuthor:     "",
		domain.MetaCreated:    "",
		domain.MetaModifiedAt: "",
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return meta
	}

	for _, zf := range zr.File {
		if zf.Name != "docProps/core.xml" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return meta
		}
		raw, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return meta
		}

		var props coreProps
		if xml.Unmarshal(raw, &props) == nil {
			meta[domain.MetaTitle] = props.Title
			meta[domain.MetaAuthor] = props.Creator
			meta[domain.MetaCreated] = props.Created
			meta[domain.MetaModifiedAt] = props.Modified
		}
		break
	}

	return meta
}
