package opc

import (
	"fmt"
	"path"

	"github.com/beevik/etree"
)

// Part is a single named entry of a package.
type Part struct {
	name string
	pkg  *Package
	data []byte
	doc  *etree.Document
	rels *Relationships
}

// Name returns the part name without a leading slash, e.g. "ppt/slides/slide1.xml".
func (p *Part) Name() string {
	return p.name
}

// Package returns the owning package.
func (p *Part) Package() *Package {
	return p.pkg
}

// ContentType returns the registered content type of the part.
func (p *Part) ContentType() string {
	return p.pkg.types.Lookup(p.name)
}

// Data returns the serialized bytes of the part. If the part has been parsed
// with XML, the current tree is serialized.
func (p *Part) Data() ([]byte, error) {
	if p.doc == nil {
		return p.data, nil
	}
	return p.doc.WriteToBytes()
}

// SetData replaces the part content and discards any parsed tree.
func (p *Part) SetData(data []byte) {
	p.data = data
	p.doc = nil
}

// XML parses the part on first use and returns the live document. Mutations
// to the returned tree are written back on save.
func (p *Part) XML() (*etree.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(p.data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing %s: no root element", p.name)
	}
	p.doc = doc
	p.data = nil
	return doc, nil
}

// SetXML replaces the part content with doc.
func (p *Part) SetXML(doc *etree.Document) {
	p.doc = doc
	p.data = nil
}

// Relationships returns the part's relationship table, creating an empty one
// if the part has none yet.
func (p *Part) Relationships() *Relationships {
	if p.rels == nil {
		p.rels = newRelationships(p.pkg, p.name)
	}
	return p.rels
}

// Ext returns the file extension of the part name without the dot.
func (p *Part) Ext() string {
	ext := path.Ext(p.name)
	if ext == "" {
		return ""
	}
	return ext[1:]
}
