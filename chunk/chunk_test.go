package chunk

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBoundary_String(t *testing.T) {
	tests := []struct {
		b    Boundary
		want string
	}{
		{BoundaryEnd, "end"},
		{BoundaryParagraph, "paragraph"},
		{BoundarySentence, "sentence"},
		{BoundaryWord, "word"},
		{BoundaryHard, "hard"},
		{Boundary(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("Boundary(%d).String() = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxSize != 2250 {
		t.Errorf("MaxSize = %d, want 2250", cfg.MaxSize)
	}
	if cfg.SentenceTerminators != "." {
		t.Errorf("SentenceTerminators = %q, want %q", cfg.SentenceTerminators, ".")
	}
	if NewChunker().Config() != cfg {
		t.Error("NewChunker() does not use the default configuration")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		max        int
		want       []string
		boundaries []Boundary
	}{
		{
			name:       "fits",
			text:       "  Short text.  ",
			max:        50,
			want:       []string{"Short text."},
			boundaries: []Boundary{BoundaryEnd},
		},
		{
			name:       "newline",
			text:       "line one\nline two",
			max:        12,
			want:       []string{"line one", "line two"},
			boundaries: []Boundary{BoundaryParagraph, BoundaryEnd},
		},
		{
			name:       "sentence",
			text:       "First one. Second one.",
			max:        15,
			want:       []string{"First one.", "Second one."},
			boundaries: []Boundary{BoundarySentence, BoundaryEnd},
		},
		{
			name: "nearest sentence to the limit",
			text: "A. B. C. D",
			max:  6,
			want: []string{"A. B.", "C. D"},
		},
		{
			name:       "whitespace fallback",
			text:       "alpha beta gamma",
			max:        12,
			want:       []string{"alpha beta", "gamma"},
			boundaries: []Boundary{BoundaryWord, BoundaryEnd},
		},
		{
			name:       "hard cut",
			text:       "abcdefghij",
			max:        4,
			want:       []string{"abcd", "efgh", "ij"},
			boundaries: []Boundary{BoundaryHard, BoundaryHard, BoundaryEnd},
		},
		{
			name: "blank lines dropped",
			text: "a\n\n\n\nb",
			max:  2,
			want: []string{"a", "b"},
		},
		{
			name: "multibyte runes",
			text: "ééééé",
			max:  2,
			want: []string{"éé", "éé", "é"},
		},
		{
			name: "empty",
			text: "",
			max:  10,
			want: []string{""},
		},
		{
			name: "whitespace only",
			text: " \n\t ",
			max:  2,
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.max)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			got := Texts(chunks)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d Index = %d", i, c.Index)
				}
				if tt.text[c.Start:c.End] != c.Text {
					t.Errorf("chunk %d offsets [%d:%d] do not match its text", i, c.Start, c.End)
				}
				if tt.boundaries != nil && c.Boundary != tt.boundaries[i] {
					t.Errorf("chunk %d Boundary = %v, want %v", i, c.Boundary, tt.boundaries[i])
				}
			}
		})
	}
}

func TestSplit_LongTextWithoutBoundaries(t *testing.T) {
	chunks, err := Split(strings.Repeat("x", 5000), 2250)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	for i, want := range []int{2250, 2250, 500} {
		if got := len(chunks[i].Text); got != want {
			t.Errorf("chunk %d length = %d, want %d", i, got, want)
		}
	}
}

func TestSplit_RespectsLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog")
		switch i % 3 {
		case 0:
			b.WriteString(". ")
		case 1:
			b.WriteString("\n")
		default:
			b.WriteString(" ")
		}
	}
	text := b.String()

	for _, max := range []int{1, 7, 50, 333, 2250} {
		chunks, err := Split(text, max)
		if err != nil {
			t.Fatalf("Split(%d) error = %v", max, err)
		}
		for _, c := range chunks {
			if n := utf8.RuneCountInString(c.Text); n > max {
				t.Errorf("Split(%d): chunk %d has %d runes", max, c.Index, n)
			}
			if c.Text == "" {
				t.Errorf("Split(%d): empty chunk %d", max, c.Index)
			}
		}
	}
}

func TestSplit_InvalidSize(t *testing.T) {
	for _, max := range []int{0, -1} {
		if _, err := Split("text", max); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Split(%d) error = %v, want ErrInvalidSize", max, err)
		}
	}
}

func TestChunker_SentenceTerminators(t *testing.T) {
	text := "Wait! Go now"

	got := Texts(mustSplit(t, NewChunkerWithConfig(Config{MaxSize: 8}), text))
	if want := []string{"Wait! Go", "now"}; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("default terminators: %q, want %q", got, want)
	}

	got = Texts(mustSplit(t, NewChunkerWithConfig(Config{MaxSize: 8, SentenceTerminators: ".!"}), text))
	if want := []string{"Wait!", "Go now"}; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("custom terminators: %q, want %q", got, want)
	}
}

func mustSplit(t *testing.T, c *Chunker, text string) []Chunk {
	t.Helper()
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Failed to split: %v", err)
	}
	return chunks
}

func BenchmarkSplit(b *testing.B) {
	text := strings.Repeat("Revenue grew in every region this quarter. ", 500)
	c := NewChunker()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Split(text); err != nil {
			b.Fatal(err)
		}
	}
}
