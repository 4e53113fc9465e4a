// Package opc implements the subset of the Open Packaging Conventions needed to
// edit Office documents in place: a ZIP container of named parts, the
// [Content_Types].xml registry, and per-part relationship tables.
//
// Parts are held in memory. XML parts are parsed lazily into an etree document
// and serialized again on save, so callers mutate the tree directly.
//
// A Package is not safe for concurrent use.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// Well-known part names.
const (
	ContentTypesPart = "[Content_Types].xml"
	PackageRelsPart  = "_rels/.rels"
)

// Package is an opened OPC container.
type Package struct {
	parts map[string]*Part
	order []string // zip order at open time, used for stable output
	types *ContentTypes
	rels  *Relationships
}

// Open reads a package from a file on disk.
func Open(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes reads a package from an in-memory ZIP archive.
func OpenBytes(data []byte) (*Package, error) {
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader reads a package from r. All parts are loaded into memory; r is not
// retained after OpenReader returns.
func OpenReader(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	p := &Package{parts: make(map[string]*Part)}
	relsData := make(map[string][]byte)

	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		switch {
		case f.Name == ContentTypesPart:
			p.types, err = parseContentTypes(data)
			if err != nil {
				return nil, fmt.Errorf("parsing content types: %w", err)
			}
		case isRelsPart(f.Name):
			relsData[f.Name] = data
		default:
			p.parts[f.Name] = &Part{name: f.Name, pkg: p, data: data}
			p.order = append(p.order, f.Name)
		}
	}

	if p.types == nil {
		return nil, fmt.Errorf("missing required file: %s", ContentTypesPart)
	}

	for name, data := range relsData {
		source := sourceForRelsPart(name)
		rels, err := parseRelationships(p, source, data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if source == "" {
			p.rels = rels
			continue
		}
		if part, ok := p.parts[source]; ok {
			part.rels = rels
		}
	}
	if p.rels == nil {
		p.rels = newRelationships(p, "")
	}

	return p, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Relationships returns the package-level relationships (_rels/.rels).
func (p *Package) Relationships() *Relationships {
	return p.rels
}

// ContentTypes returns the content type registry.
func (p *Package) ContentTypes() *ContentTypes {
	return p.types
}

// Part returns the part with the given name, or nil. Names have no leading slash.
func (p *Package) Part(name string) *Part {
	return p.parts[strings.TrimPrefix(name, "/")]
}

// Parts returns all parts sorted by name.
func (p *Package) Parts() []*Part {
	names := make([]string, 0, len(p.parts))
	for name := range p.parts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]*Part, len(names))
	for i, name := range names {
		parts[i] = p.parts[name]
	}
	return parts
}

// AddPart creates a new part and registers its content type as an override.
// It fails if a part with that name already exists.
func (p *Package) AddPart(name, contentType string, data []byte) (*Part, error) {
	name = strings.TrimPrefix(name, "/")
	if _, exists := p.parts[name]; exists {
		return nil, fmt.Errorf("part already exists: %s", name)
	}
	part := &Part{name: name, pkg: p, data: data}
	p.parts[name] = part
	p.order = append(p.order, name)
	if contentType != "" && p.types.Lookup(name) != contentType {
		p.types.SetOverride(name, contentType)
	}
	return part, nil
}

// RemovePart deletes a part and its content type override. Relationships
// pointing at it are left to the caller.
func (p *Package) RemovePart(name string) {
	name = strings.TrimPrefix(name, "/")
	delete(p.parts, name)
	p.types.RemoveOverride(name)
}

// NextPartName returns the first unused part name produced by formatting
// pattern with 1, 2, 3, ... The pattern must contain a single %d verb.
func (p *Package) NextPartName(pattern string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf(pattern, i)
		if _, exists := p.parts[name]; !exists {
			return name
		}
	}
}

// Save writes the package to filename.
func (p *Package) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filename, err)
	}
	return nil
}

// Bytes serializes the package into memory.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the package as a ZIP archive. Only parts reachable from the
// package relationships through internal relationships are written; parts that
// nothing references any more are dropped, which is how removed slides and
// detached diagram drawings leave the file.
func (p *Package) Write(w io.Writer) error {
	reachable := p.reachableParts()

	names := make([]string, 0, len(reachable))
	seen := make(map[string]bool)
	for _, name := range p.order {
		if reachable[name] && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	zw := zip.NewWriter(w)

	types := p.types.forParts(names)
	typesData, err := types.marshal()
	if err != nil {
		return fmt.Errorf("serializing content types: %w", err)
	}
	if err := writeZipEntry(zw, ContentTypesPart, typesData); err != nil {
		return err
	}

	if err := p.writeRels(zw, PackageRelsPart, p.rels); err != nil {
		return err
	}

	for _, name := range names {
		part := p.parts[name]
		data, err := part.Data()
		if err != nil {
			return fmt.Errorf("serializing %s: %w", name, err)
		}
		if err := writeZipEntry(zw, name, data); err != nil {
			return err
		}
		if part.rels != nil && part.rels.Len() > 0 {
			if err := p.writeRels(zw, relsPartFor(name), part.rels); err != nil {
				return err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing ZIP archive: %w", err)
	}
	return nil
}

func (p *Package) writeRels(zw *zip.Writer, name string, rels *Relationships) error {
	data, err := rels.marshal()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", name, err)
	}
	return writeZipEntry(zw, name, data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s in archive: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// reachableParts walks internal relationships from the package root.
func (p *Package) reachableParts() map[string]bool {
	reachable := make(map[string]bool)
	queue := []*Relationships{p.rels}
	for len(queue) > 0 {
		rels := queue[0]
		queue = queue[1:]
		for _, rel := range rels.All() {
			if rel.External {
				continue
			}
			target := rels.TargetName(rel)
			if reachable[target] {
				continue
			}
			part, ok := p.parts[target]
			if !ok {
				continue
			}
			reachable[target] = true
			if part.rels != nil {
				queue = append(queue, part.rels)
			}
		}
	}
	return reachable
}

// Clone returns a deep copy of the package by serializing every part,
// reachable or not.
func (p *Package) Clone() (*Package, error) {
	c := &Package{
		parts: make(map[string]*Part, len(p.parts)),
		order: append([]string(nil), p.order...),
		types: p.types.clone(),
	}
	c.rels = p.rels.cloneInto(c)
	for name, part := range p.parts {
		data, err := part.Data()
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		cp := &Part{name: name, pkg: c, data: append([]byte(nil), data...)}
		if part.rels != nil {
			cp.rels = part.rels.cloneInto(c)
		}
		c.parts[name] = cp
	}
	return c, nil
}

// isRelsPart reports whether name is a relationships part such as
// "ppt/slides/_rels/slide1.xml.rels".
func isRelsPart(name string) bool {
	return strings.HasSuffix(name, ".rels") && path.Base(path.Dir(name)) == "_rels"
}

// sourceForRelsPart maps "ppt/slides/_rels/slide1.xml.rels" to
// "ppt/slides/slide1.xml" and "_rels/.rels" to "".
func sourceForRelsPart(name string) string {
	dir := path.Dir(path.Dir(name))
	base := strings.TrimSuffix(path.Base(name), ".rels")
	if base == "" {
		return ""
	}
	if dir == "." {
		return base
	}
	return dir + "/" + base
}

// relsPartFor is the inverse of sourceForRelsPart.
func relsPartFor(name string) string {
	dir := path.Dir(name)
	if dir == "." {
		return "_rels/" + path.Base(name) + ".rels"
	}
	return dir + "/_rels/" + path.Base(name) + ".rels"
}
