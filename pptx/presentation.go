package pptx

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/tsawler/slidekit/opc"
)

// ErrSlideIndexOutOfRange is returned for slide positions outside the slide-ID list.
var ErrSlideIndexOutOfRange = errors.New("slide index out of range")

// minSlideID is the smallest value PowerPoint accepts in p:sldId/@id.
const minSlideID = 256

// Presentation is an open PPTX document. Slide order is the order of the
// p:sldIdLst entries in presentation.xml, which is independent of the part
// names used to store the slides.
//
// A Presentation is not safe for concurrent use; process distinct documents
// in parallel instead.
type Presentation struct {
	pkg    *opc.Package
	part   *opc.Part
	doc    *etree.Document
	slides map[string]*Slide // by part name
}

// Open opens a PPTX file for editing.
func Open(filename string) (*Presentation, error) {
	pkg, err := opc.Open(filename)
	if err != nil {
		return nil, err
	}
	return FromPackage(pkg)
}

// OpenBytes opens a PPTX document held in memory.
func OpenBytes(data []byte) (*Presentation, error) {
	pkg, err := opc.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return FromPackage(pkg)
}

// FromPackage wraps an already opened package.
func FromPackage(pkg *opc.Package) (*Presentation, error) {
	rels := pkg.Relationships()
	main := rels.ByType(RelTypeOfficeDocument)
	if len(main) == 0 {
		return nil, fmt.Errorf("missing required relationship: officeDocument")
	}
	part, err := rels.TargetPart(main[0].ID)
	if err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}
	doc, err := part.XML()
	if err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}
	if !is(doc.Root(), nsPresentationML, "presentation") {
		return nil, fmt.Errorf("parsing presentation: unexpected root element %s", doc.Root().FullTag())
	}
	return &Presentation{
		pkg:    pkg,
		part:   part,
		doc:    doc,
		slides: make(map[string]*Slide),
	}, nil
}

// Package returns the underlying container.
func (p *Presentation) Package() *opc.Package {
	return p.pkg
}

// Part returns the presentation.xml part.
func (p *Presentation) Part() *opc.Part {
	return p.part
}

func (p *Presentation) root() *etree.Element {
	return p.doc.Root()
}

// sldIdLst returns p:sldIdLst, creating it in schema position if asked.
func (p *Presentation) sldIdLst(create bool) *etree.Element {
	if lst := child(p.root(), nsPresentationML, "sldIdLst"); lst != nil || !create {
		return lst
	}
	lst := newEl(prefixFor(p.root(), nsPresentationML, "p"), "sldIdLst")
	// sldIdLst follows the master id lists and precedes sldSz.
	var ref *etree.Element
	for _, c := range p.root().ChildElements() {
		if c.Tag != "sldMasterIdLst" && c.Tag != "notesMasterIdLst" && c.Tag != "handoutMasterIdLst" {
			ref = c
			break
		}
	}
	insertBefore(p.root(), ref, lst)
	return lst
}

func (p *Presentation) sldIDs() []*etree.Element {
	lst := p.sldIdLst(false)
	if lst == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range lst.ChildElements() {
		if is(c, nsPresentationML, "sldId") {
			out = append(out, c)
		}
	}
	return out
}

// relIDAttr returns the r:id attribute value of el.
func relIDAttr(el *etree.Element) string {
	for _, a := range el.Attr {
		if a.Key == "id" && a.Space != "" && lookupNS(el, a.Space) == nsRelationships {
			return a.Value
		}
	}
	return ""
}

// SlideCount returns the number of slides in the slide-ID list.
func (p *Presentation) SlideCount() int {
	return len(p.sldIDs())
}

// Slide returns the slide at the given position (0-indexed).
func (p *Presentation) Slide(index int) (*Slide, error) {
	ids := p.sldIDs()
	if index < 0 || index >= len(ids) {
		return nil, fmt.Errorf("%w: %d (0-%d)", ErrSlideIndexOutOfRange, index, len(ids)-1)
	}
	return p.slideForEntry(ids[index])
}

// Slides returns all slides in presentation order.
func (p *Presentation) Slides() ([]*Slide, error) {
	ids := p.sldIDs()
	slides := make([]*Slide, 0, len(ids))
	for _, entry := range ids {
		s, err := p.slideForEntry(entry)
		if err != nil {
			return nil, err
		}
		slides = append(slides, s)
	}
	return slides, nil
}

func (p *Presentation) slideForEntry(entry *etree.Element) (*Slide, error) {
	part, err := p.part.Relationships().TargetPart(relIDAttr(entry))
	if err != nil {
		return nil, fmt.Errorf("resolving slide %s: %w", attr(entry, "id"), err)
	}
	if s, ok := p.slides[part.Name()]; ok {
		return s, nil
	}
	s, err := newSlide(p, part)
	if err != nil {
		return nil, err
	}
	p.slides[part.Name()] = s
	return s, nil
}

func (p *Presentation) slideIndex(s *Slide) int {
	rels := p.part.Relationships()
	for i, entry := range p.sldIDs() {
		rel, ok := rels.Get(relIDAttr(entry))
		if ok && rels.TargetName(rel) == s.part.Name() {
			return i
		}
	}
	return -1
}

// SlideID returns the p:sldId/@id of a slide, the stable token PowerPoint uses
// to identify it, or "" if the slide is not in the list.
func (p *Presentation) SlideID(s *Slide) string {
	i := p.slideIndex(s)
	if i < 0 {
		return ""
	}
	return attr(p.sldIDs()[i], "id")
}

// Size returns the slide width and height in EMUs.
func (p *Presentation) Size() (cx, cy int64) {
	sz := child(p.root(), nsPresentationML, "sldSz")
	return attrInt(sz, "cx", 0), attrInt(sz, "cy", 0)
}

// SetSize sets the slide width and height in EMUs.
func (p *Presentation) SetSize(cx, cy int64) {
	sz := child(p.root(), nsPresentationML, "sldSz")
	if sz == nil {
		sz = newEl(prefixFor(p.root(), nsPresentationML, "p"), "sldSz")
		insertBefore(p.root(), child(p.root(), nsPresentationML, "notesSz"), sz)
	}
	sz.CreateAttr("cx", strconv.FormatInt(cx, 10))
	sz.CreateAttr("cy", strconv.FormatInt(cy, 10))
}

// MoveSlide moves the slide at oldIndex so that it ends up at newIndex.
// Only the slide-ID list changes.
func (p *Presentation) MoveSlide(oldIndex, newIndex int) error {
	ids := p.sldIDs()
	if oldIndex < 0 || oldIndex >= len(ids) {
		return fmt.Errorf("%w: %d (0-%d)", ErrSlideIndexOutOfRange, oldIndex, len(ids)-1)
	}
	lst := p.sldIdLst(false)
	entry := ids[oldIndex]
	lst.RemoveChild(entry)
	rest := p.sldIDs()
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(rest) {
		lst.AddChild(entry)
		return nil
	}
	lst.InsertChildAt(rest[newIndex].Index(), entry)
	return nil
}

// RemoveSlide drops the slide at index from the slide-ID list. The slide part
// stays in the package until Save, which writes only referenced parts.
func (p *Presentation) RemoveSlide(index int) error {
	ids := p.sldIDs()
	if index < 0 || index >= len(ids) {
		return fmt.Errorf("%w: %d (0-%d)", ErrSlideIndexOutOfRange, index, len(ids)-1)
	}
	p.sldIdLst(false).RemoveChild(ids[index])
	return nil
}

// RemoveAllSlides empties the slide-ID list.
func (p *Presentation) RemoveAllSlides() {
	lst := p.sldIdLst(false)
	for _, entry := range p.sldIDs() {
		lst.RemoveChild(entry)
	}
}

// Prune removes presentation relationships to slides that are no longer in
// the slide-ID list, so the next save drops their parts. Parts shared with
// remaining slides (media, embeddings) stay reachable through those slides.
func (p *Presentation) Prune() {
	listed := make(map[string]bool)
	for _, entry := range p.sldIDs() {
		listed[relIDAttr(entry)] = true
	}
	rels := p.part.Relationships()
	for _, rel := range rels.ByType(RelTypeSlide) {
		if listed[rel.ID] {
			continue
		}
		delete(p.slides, rels.TargetName(rel))
		rels.Remove(rel.ID)
	}
}

// Save prunes unlisted slides and writes the document to filename.
func (p *Presentation) Save(filename string) error {
	p.Prune()
	return p.pkg.Save(filename)
}

// Write prunes unlisted slides and writes the document to w.
func (p *Presentation) Write(w io.Writer) error {
	p.Prune()
	return p.pkg.Write(w)
}

// CloneEmpty returns a copy of the presentation that shares its masters,
// layouts, theme and slide size but has no slides.
func (p *Presentation) CloneEmpty() (*Presentation, error) {
	pkg, err := p.pkg.Clone()
	if err != nil {
		return nil, fmt.Errorf("cloning package: %w", err)
	}
	c, err := FromPackage(pkg)
	if err != nil {
		return nil, err
	}
	c.RemoveAllSlides()
	c.Prune()
	return c, nil
}

// nextSlideID returns an unused p:sldId/@id value.
func (p *Presentation) nextSlideID() int {
	max := minSlideID - 1
	for _, entry := range p.sldIDs() {
		if id := int(attrInt(entry, "id", 0)); id > max {
			max = id
		}
	}
	return max + 1
}

// AddSlide appends a new slide based on layout. Placeholders of the layout
// (other than date, footer and slide number) are cloned onto the slide, the
// way PowerPoint does when a slide is inserted.
func (p *Presentation) AddSlide(layout *Layout) (*Slide, error) {
	name := p.pkg.NextPartName("ppt/slides/slide%d.xml")

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("p:sld")
	root.CreateAttr("xmlns:a", nsDrawingML)
	root.CreateAttr("xmlns:r", nsRelationships)
	root.CreateAttr("xmlns:p", nsPresentationML)
	tree := addEl(addEl(root, "p", "cSld"), "p", "spTree")
	nv := addEl(tree, "p", "nvGrpSpPr")
	cNvPr := addEl(nv, "p", "cNvPr")
	cNvPr.CreateAttr("id", "1")
	cNvPr.CreateAttr("name", "")
	addEl(nv, "p", "cNvGrpSpPr")
	addEl(nv, "p", "nvPr")
	addEl(addEl(tree, "p", "grpSpPr"), "a", "xfrm")
	addEl(addEl(root, "p", "clrMapOvr"), "a", "masterClrMapping")

	part, err := p.pkg.AddPart(name, ContentTypeSlide, nil)
	if err != nil {
		return nil, err
	}
	part.SetXML(doc)

	if layout != nil {
		part.Relationships().AddInternal(RelTypeSlideLayout, layout.part)
	}
	rID := p.part.Relationships().AddInternal(RelTypeSlide, part)

	entry := addEl(p.sldIdLst(true), prefixFor(p.root(), nsPresentationML, "p"), "sldId")
	entry.CreateAttr("id", strconv.Itoa(p.nextSlideID()))
	entry.CreateAttr(prefixFor(p.root(), nsRelationships, "r")+":id", rID)

	s, err := newSlide(p, part)
	if err != nil {
		return nil, err
	}
	p.slides[name] = s

	if layout != nil {
		if err := s.clonePlaceholders(layout); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// clonePlaceholders copies the layout's sp placeholders as empty shapes.
func (s *Slide) clonePlaceholders(layout *Layout) error {
	ltree, err := layout.tree()
	if err != nil {
		return err
	}
	alloc := NewIDAllocator(s)
	for _, sh := range shapesIn(ltree) {
		if sh.kind != KindShape || !sh.IsPlaceholder() {
			continue
		}
		switch sh.PlaceholderType() {
		case "dt", "ftr", "sldNum":
			continue
		}
		sp := newEl("p", "sp")
		nv := addEl(sp, "p", "nvSpPr")
		c := addEl(nv, "p", "cNvPr")
		c.CreateAttr("id", strconv.Itoa(alloc.Next()))
		c.CreateAttr("name", sh.Name())
		locks := addEl(addEl(nv, "p", "cNvSpPr"), "a", "spLocks")
		locks.CreateAttr("noGrp", "1")
		nvPr := addEl(nv, "p", "nvPr")
		for _, src := range sh.el.ChildElements() {
			if ph := child(child(src, nsPresentationML, "nvPr"), nsPresentationML, "ph"); ph != nil {
				cp := ph.Copy()
				cp.Space = "p"
				nvPr.AddChild(cp)
			}
		}
		addEl(sp, "p", "spPr")
		body := addEl(sp, "p", "txBody")
		addEl(body, "a", "bodyPr")
		addEl(body, "a", "lstStyle")
		addEl(body, "a", "p")
		s.insertElement(sp)
	}
	return nil
}

// Layout is a slide layout available to new slides.
type Layout struct {
	part *opc.Part
	name string
}

// Name returns the layout's cSld/@name.
func (l *Layout) Name() string {
	return l.name
}

// Part returns the layout part.
func (l *Layout) Part() *opc.Part {
	return l.part
}

func (l *Layout) tree() (*etree.Element, error) {
	doc, err := l.part.XML()
	if err != nil {
		return nil, err
	}
	tree := childPath(doc.Root(), nsPresentationML, "cSld", "spTree")
	if tree == nil {
		return nil, fmt.Errorf("%s: missing shape tree", l.part.Name())
	}
	return tree, nil
}

// PlaceholderCount returns the number of placeholder shapes on the layout.
func (l *Layout) PlaceholderCount() int {
	tree, err := l.tree()
	if err != nil {
		return 0
	}
	n := 0
	for _, sh := range shapesIn(tree) {
		if sh.IsPlaceholder() {
			n++
		}
	}
	return n
}

// Layouts returns the layouts of the first slide master in declaration order.
// Presentations without a master list fall back to every layout part sorted
// by name.
func (p *Presentation) Layouts() ([]*Layout, error) {
	var parts []*opc.Part
	rels := p.part.Relationships()
	if lst := child(p.root(), nsPresentationML, "sldMasterIdLst"); lst != nil {
		if entries := lst.ChildElements(); len(entries) > 0 {
			master, err := rels.TargetPart(relIDAttr(entries[0]))
			if err != nil {
				return nil, fmt.Errorf("resolving slide master: %w", err)
			}
			parts, err = layoutsOfMaster(master)
			if err != nil {
				return nil, err
			}
		}
	}
	if parts == nil {
		for _, part := range p.pkg.Parts() {
			if strings.HasPrefix(part.Name(), "ppt/slideLayouts/slideLayout") && strings.HasSuffix(part.Name(), ".xml") {
				parts = append(parts, part)
			}
		}
		sort.SliceStable(parts, func(i, j int) bool {
			return partNumber(parts[i].Name()) < partNumber(parts[j].Name())
		})
	}

	layouts := make([]*Layout, 0, len(parts))
	for _, part := range parts {
		doc, err := part.XML()
		if err != nil {
			return nil, err
		}
		name := child(doc.Root(), nsPresentationML, "cSld").SelectAttrValue("name", "")
		layouts = append(layouts, &Layout{part: part, name: name})
	}
	return layouts, nil
}

func layoutsOfMaster(master *opc.Part) ([]*opc.Part, error) {
	doc, err := master.XML()
	if err != nil {
		return nil, err
	}
	lst := child(doc.Root(), nsPresentationML, "sldLayoutIdLst")
	if lst == nil {
		return nil, nil
	}
	var parts []*opc.Part
	for _, entry := range lst.ChildElements() {
		part, err := master.Relationships().TargetPart(relIDAttr(entry))
		if err != nil {
			return nil, fmt.Errorf("resolving slide layout: %w", err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// BlankLayout returns the layout with the fewest placeholders, the first one
// in declaration order on ties.
func (p *Presentation) BlankLayout() (*Layout, error) {
	layouts, err := p.Layouts()
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("presentation has no slide layouts")
	}
	best, bestCount := layouts[0], layouts[0].PlaceholderCount()
	for _, l := range layouts[1:] {
		if n := l.PlaceholderCount(); n < bestCount {
			best, bestCount = l, n
		}
	}
	return best, nil
}

// LayoutByName returns the layout whose cSld/@name matches.
func (p *Presentation) LayoutByName(name string) (*Layout, error) {
	layouts, err := p.Layouts()
	if err != nil {
		return nil, err
	}
	for _, l := range layouts {
		if l.name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layout not found: %s", name)
}

// notesMaster returns the notes master part, if the presentation has one.
func (p *Presentation) notesMaster() *opc.Part {
	rels := p.part.Relationships()
	for _, rel := range rels.ByType(RelTypeNotesMaster) {
		if part, err := rels.TargetPart(rel.ID); err == nil {
			return part
		}
	}
	return nil
}

// partNumber extracts N from names like "ppt/slides/slide12.xml".
func partNumber(name string) int {
	base := name[strings.LastIndex(name, "/")+1:]
	base = strings.TrimSuffix(base, ".xml")
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, _ := strconv.Atoi(base[i:])
	return n
}
