package chunk

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

func TestSplit_EmptyText(t *testing.T) {
	pieces, err := Split("", 100, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pieces) != 0 {
		t.Fatalf("expected no pieces, got %d", len(pieces))
	}
}

func TestSplit_TextShorterThanSize(t *testing.T) {
	pieces, err := Split("hello world", 20, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	p := pieces[0]
	if p.Content != "hello world" {
		t.Errorf("unexpected content: %q", p.Content)
	}
	if p.Start != 0 || p.End != 20 {
		t.Errorf("expected window [0,20), got [%d,%d)", p.Start, p.End)
	}
}

func TestSplit_SnapsToLastSpace(t *testing.T) {
	// idx:      0123456789012345678
	text := "abcdefgh ij klmnop"

	pieces, err := Split(text, 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Piece{
		{Content: "abcdefgh", Index: 0, Start: 0, End: 8},
		{Content: "fgh ij", Index: 1, Start: 5, End: 11},
		{Content: "ij klmnop", Index: 2, Start: 8, End: 18},
		{Content: "nop", Index: 3, Start: 15, End: 25},
	}
	if len(pieces) != len(want) {
		t.Fatalf("expected %d pieces, got %d: %+v", len(want), len(pieces), pieces)
	}
	for i, w := range want {
		if pieces[i] != w {
			t.Errorf("piece %d: got %+v, want %+v", i, pieces[i], w)
		}
	}
}

func TestSplit_NoSnapBeforeHalfway(t *testing.T) {
	// The only space sits at index 2, at or before size/2, so the window
	// is kept whole and the word is cut.
	text := "ab cdefghijkl"

	pieces, err := Split(text, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if pieces[0].Content != "ab cdefghi" {
		t.Errorf("expected unsnapped window, got %q", pieces[0].Content)
	}
	if pieces[0].End != 10 {
		t.Errorf("expected End=10, got %d", pieces[0].End)
	}
	if pieces[1].Content != "jkl" {
		t.Errorf("unexpected tail: %q", pieces[1].Content)
	}
}

func TestSplit_NeverSplitsRunes(t *testing.T) {
	// Four 3-byte runes, no spaces: every hard cut would land mid-rune
	// and must back up to the rune start.
	text := "世界世界"

	pieces, err := Split(text, 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"世", "界", "世", "界"}
	if len(pieces) != len(want) {
		t.Fatalf("expected %d pieces, got %d: %+v", len(want), len(pieces), pieces)
	}
	for i, p := range pieces {
		if !utf8.ValidString(p.Content) {
			t.Errorf("piece %d is not valid UTF-8: %q", i, p.Content)
		}
		if p.Content != want[i] {
			t.Errorf("piece %d: got %q, want %q", i, p.Content, want[i])
		}
	}
}

func TestSplit_OverlapNeverStartsMidRune(t *testing.T) {
	// With overlap 1 the next window would begin on a continuation byte;
	// the start must advance to the next rune boundary instead.
	text := "世界世界"

	pieces, err := Split(text, 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pieces) == 0 {
		t.Fatal("expected pieces")
	}
	for i, p := range pieces {
		if !utf8.ValidString(p.Content) {
			t.Errorf("piece %d is not valid UTF-8: %q", i, p.Content)
		}
		if p.Content == "" {
			t.Errorf("piece %d is empty", i)
		}
	}
}

func TestSplit_OverlapAdvance(t *testing.T) {
	text := strings.Repeat("word and more text here so it splits often ", 20)
	overlap := 40

	pieces, err := Split(text, 200, overlap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pieces) < 3 {
		t.Fatalf("expected several pieces, got %d", len(pieces))
	}
	for i := 1; i < len(pieces); i++ {
		if pieces[i].Start != pieces[i-1].End-overlap {
			t.Errorf("piece %d: start %d, want %d (prev end %d - overlap %d)",
				i, pieces[i].Start, pieces[i-1].End-overlap, pieces[i-1].End, overlap)
		}
		if pieces[i].Index != i {
			t.Errorf("piece %d: index %d", i, pieces[i].Index)
		}
	}
}

func TestSplit_ContentIsTrimmed(t *testing.T) {
	pieces, err := Split("abcdefgh ij klmnop", 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range pieces {
		if p.Content != strings.TrimSpace(p.Content) {
			t.Errorf("piece %d content not trimmed: %q", i, p.Content)
		}
	}
}

func TestSplit_InvalidParams(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split("some text", tc.size, tc.overlap)
			if !errors.Is(err, domain.ErrInvalidChunking) {
				t.Fatalf("expected ErrInvalidChunking, got %v", err)
			}
		})
	}
}
