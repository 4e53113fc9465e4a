// Package chunk splits long text into pieces that fit a fixed character
// budget, cutting at paragraph or sentence boundaries whenever one is close
// enough to the limit.
package chunk

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultMaxSize is the number of characters a content placeholder holds
// before the text overflows onto another slide.
const DefaultMaxSize = 2250

// ErrInvalidSize is returned when the maximum chunk size is not positive.
var ErrInvalidSize = errors.New("chunk: maximum size must be positive")

// Boundary is the kind of position a chunk was cut at.
type Boundary int

const (
	// BoundaryEnd marks the last chunk, which runs to the end of the text
	BoundaryEnd Boundary = iota
	// BoundaryParagraph is a cut before a newline
	BoundaryParagraph
	// BoundarySentence is a cut after a sentence terminator followed by a space
	BoundarySentence
	// BoundaryWord is a cut before whitespace when no sentence boundary exists
	BoundaryWord
	// BoundaryHard is a cut at exactly the maximum size
	BoundaryHard
)

// String returns a human-readable representation of the boundary
func (b Boundary) String() string {
	switch b {
	case BoundaryEnd:
		return "end"
	case BoundaryParagraph:
		return "paragraph"
	case BoundarySentence:
		return "sentence"
	case BoundaryWord:
		return "word"
	case BoundaryHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Config holds configuration for splitting.
type Config struct {
	// MaxSize is the maximum number of characters (runes) per chunk
	MaxSize int

	// SentenceTerminators are the runes that end a sentence when followed by a space
	SentenceTerminators string
}

// DefaultConfig returns the configuration used for slide content.
func DefaultConfig() Config {
	return Config{
		MaxSize:             DefaultMaxSize,
		SentenceTerminators: ".",
	}
}

// Chunk is one piece of the split text.
type Chunk struct {
	// Index is the position of the chunk in the result (0-indexed)
	Index int

	// Text is the chunk content, trimmed of surrounding whitespace
	Text string

	// Start and End are the byte offsets of Text in the input
	Start int
	End   int

	// Boundary is the kind of cut that ended this chunk
	Boundary Boundary
}

// String returns a short description of the chunk
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d [%d:%d] %s", c.Index, c.Start, c.End, c.Boundary)
}

// Chunker splits text according to its Config. A Chunker is stateless and
// safe for concurrent use.
type Chunker struct {
	config Config
}

// NewChunker creates a chunker with the default configuration.
func NewChunker() *Chunker {
	return &Chunker{config: DefaultConfig()}
}

// NewChunkerWithConfig creates a chunker with the given configuration. An
// empty terminator set means ".".
func NewChunkerWithConfig(config Config) *Chunker {
	if config.SentenceTerminators == "" {
		config.SentenceTerminators = "."
	}
	return &Chunker{config: config}
}

// Config returns the chunker's configuration.
func (c *Chunker) Config() Config {
	return c.config
}

// Split cuts text into chunks of at most maxSize characters using the
// default sentence terminators.
func Split(text string, maxSize int) ([]Chunk, error) {
	cfg := DefaultConfig()
	cfg.MaxSize = maxSize
	return NewChunkerWithConfig(cfg).Split(text)
}

// Split cuts text into chunks of at most MaxSize characters. While more than
// MaxSize characters remain it scans backward from the limit for the nearest
// newline (cutting before it) or terminator-space pair (cutting after the
// terminator). Without either it cuts before the last whitespace, and failing
// that at exactly MaxSize. Chunks are trimmed and empty ones dropped, but text
// with nothing visible still yields one empty chunk so callers place it once.
func (c *Chunker) Split(text string) ([]Chunk, error) {
	limit := c.config.MaxSize
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, limit)
	}

	runes := []rune(text)
	offsets := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(runes)] = off

	var chunks []Chunk
	emit := func(from, to int, b Boundary) {
		start, end := offsets[from], offsets[to]
		seg := text[start:end]
		trimmed := strings.TrimLeftFunc(seg, unicode.IsSpace)
		start += len(seg) - len(trimmed)
		trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)
		if trimmed == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:    len(chunks),
			Text:     trimmed,
			Start:    start,
			End:      start + len(trimmed),
			Boundary: b,
		})
	}

	pos := 0
	for len(runes)-pos > limit {
		cut, b := c.cutPoint(runes[pos : pos+limit+1])
		emit(pos, pos+cut, b)
		pos += cut
	}
	emit(pos, len(runes), BoundaryEnd)
	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{Boundary: BoundaryEnd})
	}
	return chunks, nil
}

// cutPoint picks where to end a chunk inside window, whose last index is the
// maximum size. The result is always at least 1.
func (c *Chunker) cutPoint(window []rune) (int, Boundary) {
	limit := len(window) - 1
	for i := limit; i > 0; i-- {
		if window[i] == '\n' {
			return i, BoundaryParagraph
		}
		if window[i] == ' ' && strings.ContainsRune(c.config.SentenceTerminators, window[i-1]) {
			return i, BoundarySentence
		}
	}
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i, BoundaryWord
		}
	}
	return limit, BoundaryHard
}

// Texts returns the text of every chunk.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
