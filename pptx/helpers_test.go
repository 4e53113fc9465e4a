package pptx

import (
	"bytes"
	"testing"

	"github.com/tsawler/slidekit/internal/pptxtest"
)

func openDeck(t *testing.T, d pptxtest.Deck) *Presentation {
	t.Helper()
	p, err := OpenBytes(d.Bytes(t))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	return p
}

// reopen saves p to memory and opens the result.
func reopen(t *testing.T, p *Presentation) *Presentation {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out, err := OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("OpenBytes() after save error = %v", err)
	}
	return out
}

func mustSlide(t *testing.T, p *Presentation, i int) *Slide {
	t.Helper()
	s, err := p.Slide(i)
	if err != nil {
		t.Fatalf("Slide(%d) error = %v", i, err)
	}
	return s
}

func shapeNames(shapes []*Shape) []string {
	names := make([]string, 0, len(shapes))
	for _, sh := range shapes {
		names = append(names, sh.Name())
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// pictureBytes returns the image bytes behind a picture shape.
func pictureBytes(t *testing.T, s *Slide, sh *Shape) []byte {
	t.Helper()
	part, err := s.Part().Relationships().TargetPart(embedAttr(blipOf(sh.Element())))
	if err != nil {
		t.Fatalf("resolving picture %q: %v", sh.Name(), err)
	}
	data, err := part.Data()
	if err != nil {
		t.Fatalf("reading picture %q: %v", sh.Name(), err)
	}
	return data
}
