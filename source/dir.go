package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Dir is a Source over files in a local directory.
type Dir struct {
	root      string
	match     matcher
	recursive bool
}

// NewDir returns a source for the files under root whose base name matches
// pattern (DefaultPattern when empty). With recursive, subdirectories are
// searched too.
func NewDir(root, pattern string, recursive bool) (*Dir, error) {
	m, err := newMatcher(pattern)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory: %s is not a directory", root)
	}
	return &Dir{root: root, match: m, recursive: recursive}, nil
}

// List returns the matching files sorted by path.
func (d *Dir) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if p != d.root && !d.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.match.match(entry.Name()) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		docs = append(docs, Document{Name: p, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.root, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Read returns the contents of a listed file.
func (d *Dir) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(name)
}
