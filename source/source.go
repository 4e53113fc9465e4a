// Package source lists and reads the presentations an index run works on,
// from a local directory or an S3-compatible bucket.
package source

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// DefaultPattern selects presentation files.
const DefaultPattern = "*.pptx"

// Document is one presentation found by a Source.
type Document struct {
	Name    string // file path or object key; Read accepts it back
	Size    int64
	ModTime time.Time
}

// Source lists presentations and reads their bytes.
type Source interface {
	List(ctx context.Context) ([]Document, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// matcher matches base names against a glob, ignoring case and Office lock
// files ("~$deck.pptx").
type matcher struct {
	g glob.Glob
}

func newMatcher(pattern string) (matcher, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return matcher{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return matcher{g: g}, nil
}

func (m matcher) match(name string) bool {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if strings.HasPrefix(base, "~$") {
		return false
	}
	return m.g.Match(strings.ToLower(base))
}
