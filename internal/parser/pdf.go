package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// PDFParser extracts page text and Info-dictionary metadata from PDF files.
type PDFParser struct{}

// Parse reads the PDF at path, joining page texts with newlines.
func (p *PDFParser) Parse(path string) (parsed Parsed, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf %s: %v: %w", path, r, domain.ErrParseFailed)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return Parsed{}, fmt.Errorf("pdf %s: %w: %w", path, err, domain.ErrParseFailed)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue // skip unreadable pages, keep the rest
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	meta := map[string]string{
		domain.MetaPages:   strconv.Itoa(numPages),
		domain.MetaTitle:   "",
		domain.MetaAuthor:  "",
		domain.MetaCreated: "",
	}
	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		meta[domain.MetaTitle] = infoString(info, "Title")
		meta[domain.MetaAuthor] = infoString(info, "Author")
		meta[domain.MetaCreated] = infoString(info, "CreationDate")
	}

	return Parsed{Text: sb.String(), Metadata: meta}, nil
}

// infoString reads a string entry from the Info dictionary, empty when absent.
func infoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return v.Text()
}
