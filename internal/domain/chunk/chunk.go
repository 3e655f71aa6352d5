// Package chunk splits cleaned text into overlapping, word-boundary-aware
// segments for embedding and retrieval.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Piece is one segment of the input text. Start/End are offsets of the
// untrimmed window; Content is the window stripped of surrounding whitespace.
type Piece struct {
	Content string
	Index   int
	Start   int
	End     int
}

// Split cuts text into pieces of at most size bytes, each overlapping the
// previous by overlap bytes; offsets are byte positions into text. A window
// is trimmed back to its last space only when that space lies past the
// halfway point of the window, so a word-boundary snap can never discard more
// than half a chunk. Cuts never land inside a multi-byte rune: a hard cut
// backs up to the rune start, and a window never begins on a continuation
// byte. The final tail is emitted as-is. Empty text yields no pieces.
func Split(text string, size, overlap int) ([]Piece, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d: %w", size, domain.ErrInvalidChunking)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got %d: %w", overlap, domain.ErrInvalidChunking)
	}

	var pieces []Piece
	start := 0
	index := 0

	for start < len(text) {
		end := start + size

		var content string
		if end >= len(text) {
			content = text[start:]
			end = start + size
		} else {
			if last := strings.LastIndexByte(text[start:end], ' '); last != -1 && last > size/2 {
				end = start + last
			} else {
				for end > start+1 && !utf8.RuneStart(text[end]) {
					end--
				}
			}
			content = text[start:end]
		}

		pieces = append(pieces, Piece{
			Content: strings.TrimSpace(content),
			Index:   index,
			Start:   start,
			End:     end,
		})

		start = end - overlap
		for start > 0 && start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
		index++
	}

	return pieces, nil
}
