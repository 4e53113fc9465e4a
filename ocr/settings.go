package ocr

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrOCRNotEnabled is returned by New in builds without the ocr tag.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Mode selects how Tesseract segments a picture. Only the modes that suit
// slide pictures are exposed; the values are Tesseract's own.
type Mode int

const (
	// ModeAuto lets Tesseract find the layout. Suits scanned handouts.
	ModeAuto Mode = 3
	// ModeSingleBlock treats the picture as one block of text. Suits
	// screenshots of a paragraph or a code listing.
	ModeSingleBlock Mode = 6
	// ModeSparseText finds scattered words. Suits charts and diagrams.
	ModeSparseText Mode = 11
)

var modeNames = map[Mode]string{
	ModeAuto:        "auto",
	ModeSingleBlock: "block",
	ModeSparseText:  "sparse",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "auto", "block" or "sparse" to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("ocr: unknown mode %q (want auto, block or sparse)", s)
}

type settings struct {
	languages []string
	mode      Mode
}

func defaultSettings() settings {
	return settings{languages: []string{"eng"}, mode: ModeAuto}
}

// Option configures a Client.
type Option func(*settings)

// WithLanguages sets the Tesseract language packs, e.g. "eng", "fra".
// Values of the form "eng+fra" are split. Empty input keeps the default.
func WithLanguages(langs ...string) Option {
	return func(s *settings) {
		var out []string
		for _, l := range langs {
			for _, part := range strings.Split(l, "+") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		if len(out) > 0 {
			s.languages = out
		}
	}
}

// WithMode sets the segmentation mode.
func WithMode(m Mode) Option {
	return func(s *settings) { s.mode = m }
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// cleanText trims recognized text for indexing. Lines without a letter or
// digit are dropped, since they are usually noise from borders and shading.
// Runs of blank lines collapse to one.
func cleanText(raw string) string {
	var (
		b     strings.Builder
		blank bool
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if strings.TrimSpace(line) == "" {
			blank = b.Len() > 0
			continue
		}
		if strings.IndexFunc(line, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
			if blank {
				b.WriteByte('\n')
			}
		}
		blank = false
		b.WriteString(strings.TrimSpace(line))
	}
	return b.String()
}

// Enabled reports whether OCR support was compiled in.
func Enabled() bool {
	return enabled
}
