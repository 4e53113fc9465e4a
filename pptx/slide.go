package pptx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/tsawler/slidekit/opc"
)

// ErrDuplicateShapeID is returned by ValidateIDs when two shapes on one slide
// share an identifier.
var ErrDuplicateShapeID = errors.New("duplicate shape id")

// Slide is one slide part of a presentation.
type Slide struct {
	pres *Presentation
	part *opc.Part
	doc  *etree.Document
}

func newSlide(pres *Presentation, part *opc.Part) (*Slide, error) {
	doc, err := part.XML()
	if err != nil {
		return nil, err
	}
	s := &Slide{pres: pres, part: part, doc: doc}
	if s.tree() == nil {
		return nil, fmt.Errorf("%s: missing shape tree", part.Name())
	}
	return s, nil
}

// Part returns the slide's package part.
func (s *Slide) Part() *opc.Part {
	return s.part
}

// Presentation returns the owning presentation.
func (s *Slide) Presentation() *Presentation {
	return s.pres
}

// Name returns the part name, e.g. "ppt/slides/slide3.xml".
func (s *Slide) Name() string {
	return s.part.Name()
}

// Index returns the slide's position in the presentation's slide-ID list,
// or -1 if the slide has been removed from it.
func (s *Slide) Index() int {
	return s.pres.slideIndex(s)
}

// tree returns p:cSld/p:spTree.
func (s *Slide) tree() *etree.Element {
	return childPath(s.doc.Root(), nsPresentationML, "cSld", "spTree")
}

// Shapes returns the top-level shapes in paint order.
func (s *Slide) Shapes() []*Shape {
	return shapesIn(s.tree())
}

// AllShapes returns every shape including group descendants.
func (s *Slide) AllShapes() []*Shape {
	return flatten(s.Shapes())
}

// ShapeByID finds a shape anywhere in the tree.
func (s *Slide) ShapeByID(id int) *Shape {
	for _, sh := range s.AllShapes() {
		if sh.ID() == id {
			return sh
		}
	}
	return nil
}

// extLst returns the trailing p:extLst of the shape tree, if any.
func (s *Slide) extLst() *etree.Element {
	return child(s.tree(), nsPresentationML, "extLst")
}

// insertElement adds el to the shape tree immediately before the trailing
// extension list, which places it on top of the existing paint order.
func (s *Slide) insertElement(el *etree.Element) *Shape {
	insertBefore(s.tree(), s.extLst(), el)
	return newShape(el)
}

// insertAt places el at the paint position of ref.
func (s *Slide) insertAt(ref *Shape, el *etree.Element) *Shape {
	parent := ref.el.Parent()
	insertBefore(parent, ref.el, el)
	return newShape(el)
}

// RemoveShape detaches a shape from the tree. Relationships the shape used are
// left in place.
func (s *Slide) RemoveShape(sh *Shape) {
	if parent := sh.el.Parent(); parent != nil {
		parent.RemoveChild(sh.el)
	}
}

// ClearShapes removes all shapes, markup-compatibility blocks included,
// keeping the tree's own non-visual and group properties and the extension
// list.
func (s *Slide) ClearShapes() {
	for _, sh := range s.Shapes() {
		s.RemoveShape(sh)
	}
	tree := s.tree()
	for _, c := range tree.ChildElements() {
		if is(c, nsMarkupCompat, "AlternateContent") {
			tree.RemoveChild(c)
		}
	}
}

// ValidateIDs checks that no two shapes in the tree share an identifier.
// Groups are searched, and so are markup-compatibility blocks, whose
// branches may repeat one id between them.
func (s *Slide) ValidateIDs() error {
	seen := make(map[int]string)
	if root := cNvPrOf(s.tree()); root != nil {
		seen[int(attrInt(root, "id", 1))] = "shape tree"
	}
	claim := func(id int, name string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%s: %w %d (%q and %q)", s.Name(), ErrDuplicateShapeID, id, prev, name)
		}
		seen[id] = name
		return nil
	}
	for _, sh := range s.AllShapes() {
		if err := claim(sh.ID(), sh.Name()); err != nil {
			return err
		}
	}
	for _, block := range alternateBlocks(s.tree()) {
		ids, names := blockIDs(block)
		for _, id := range ids {
			if err := claim(id, names[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Layout returns the slide layout part the slide is based on.
func (s *Slide) Layout() *opc.Part {
	rels := s.part.Relationships()
	for _, rel := range rels.ByType(RelTypeSlideLayout) {
		if part, err := rels.TargetPart(rel.ID); err == nil {
			return part
		}
	}
	return nil
}

// Title returns the text of the title shape, preferring a title placeholder
// and falling back to the name rule.
func (s *Slide) Title() string {
	var byName *Shape
	for _, sh := range s.Shapes() {
		if !sh.HasTextFrame() {
			continue
		}
		switch sh.PlaceholderType() {
		case "title", "ctrTitle":
			return strings.TrimSpace(sh.Text())
		}
		if byName == nil && sh.IsTitle() {
			byName = sh
		}
	}
	if byName != nil {
		return strings.TrimSpace(byName.Text())
	}
	return ""
}
