package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Kind identifies the variant of a Shape.
type Kind int

const (
	// KindShape is an sp element: autoshape, text box or placeholder.
	KindShape Kind = iota
	// KindPicture is a pic element.
	KindPicture
	// KindGroup is a grpSp element holding nested shapes.
	KindGroup
	// KindGraphicFrame wraps a table, chart or diagram.
	KindGraphicFrame
	// KindOLEObject is a graphic frame carrying an embedded OLE object.
	KindOLEObject
	// KindConnector is a cxnSp element.
	KindConnector
	// KindContentPart is a contentPart element (ink).
	KindContentPart
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindPicture:
		return "picture"
	case KindGroup:
		return "group"
	case KindGraphicFrame:
		return "graphic_frame"
	case KindOLEObject:
		return "ole_object"
	case KindConnector:
		return "connector"
	case KindContentPart:
		return "content_part"
	default:
		return "unknown"
	}
}

// Shape is one node of a slide's shape tree. It is a thin view over the
// underlying element; mutations go straight to the XML.
type Shape struct {
	el   *etree.Element
	kind Kind
}

// newShape classifies el, returning nil when it is not a shape element.
func newShape(el *etree.Element) *Shape {
	if nsOf(el) != nsPresentationML {
		return nil
	}
	switch el.Tag {
	case "sp":
		return &Shape{el: el, kind: KindShape}
	case "pic":
		return &Shape{el: el, kind: KindPicture}
	case "grpSp":
		return &Shape{el: el, kind: KindGroup}
	case "cxnSp":
		return &Shape{el: el, kind: KindConnector}
	case "contentPart":
		return &Shape{el: el, kind: KindContentPart}
	case "graphicFrame":
		s := &Shape{el: el, kind: KindGraphicFrame}
		if s.graphicDataURI() == uriOLE {
			s.kind = KindOLEObject
		}
		return s
	}
	return nil
}

// Kind returns the shape variant.
func (s *Shape) Kind() Kind {
	return s.kind
}

// Element returns the underlying XML element.
func (s *Shape) Element() *etree.Element {
	return s.el
}

// cNvPr returns the common non-visual properties element. Every shape variant
// keeps it as the first child of its first child (nvSpPr, nvPicPr, ...).
func (s *Shape) cNvPr() *etree.Element {
	return cNvPrOf(s.el)
}

func cNvPrOf(el *etree.Element) *etree.Element {
	for _, nv := range el.ChildElements() {
		if !strings.HasPrefix(nv.Tag, "nv") {
			continue
		}
		for _, c := range nv.ChildElements() {
			if c.Tag == "cNvPr" {
				return c
			}
		}
	}
	return nil
}

// ID returns the shape identifier, or 0 if it has none.
func (s *Shape) ID() int {
	return int(attrInt(s.cNvPr(), "id", 0))
}

// SetID assigns the shape identifier.
func (s *Shape) SetID(id int) {
	if c := s.cNvPr(); c != nil {
		c.CreateAttr("id", strconv.Itoa(id))
	}
}

// Name returns the display name.
func (s *Shape) Name() string {
	c := s.cNvPr()
	if c == nil {
		return ""
	}
	return c.SelectAttrValue("name", "")
}

// SetName assigns the display name.
func (s *Shape) SetName(name string) {
	if c := s.cNvPr(); c != nil {
		c.CreateAttr("name", name)
	}
}

// Children returns the nested shapes of a group, in paint order.
func (s *Shape) Children() []*Shape {
	if s.kind != KindGroup {
		return nil
	}
	return shapesIn(s.el)
}

// IsPlaceholder reports whether the shape inherits from a layout placeholder.
func (s *Shape) IsPlaceholder() bool {
	for _, nv := range s.el.ChildElements() {
		if !strings.HasPrefix(nv.Tag, "nv") {
			continue
		}
		if child(child(nv, nsPresentationML, "nvPr"), nsPresentationML, "ph") != nil {
			return true
		}
	}
	return false
}

// PlaceholderType returns the ph@type value ("title", "body", ...), or "".
func (s *Shape) PlaceholderType() string {
	for _, nv := range s.el.ChildElements() {
		if ph := child(child(nv, nsPresentationML, "nvPr"), nsPresentationML, "ph"); ph != nil {
			return ph.SelectAttrValue("type", "")
		}
	}
	return ""
}

// xfrmElement returns the element holding off/ext for this shape.
func (s *Shape) xfrmElement() *etree.Element {
	switch s.kind {
	case KindGraphicFrame, KindOLEObject:
		return child(s.el, nsPresentationML, "xfrm")
	case KindGroup:
		return child(child(s.el, nsPresentationML, "grpSpPr"), nsDrawingML, "xfrm")
	case KindContentPart:
		return nil
	default:
		spPr := child(s.el, nsPresentationML, "spPr")
		return child(spPr, nsDrawingML, "xfrm")
	}
}

// Transform returns the shape geometry. ok is false when the shape inherits
// its position from a layout.
func (s *Shape) Transform() (t Transform, ok bool) {
	return readXfrm(s.xfrmElement())
}

// SetTransform writes the shape geometry, creating the xfrm element when the
// shape inherited its position. Group child offsets are left untouched.
func (s *Shape) SetTransform(t Transform) {
	xfrm := s.xfrmElement()
	if xfrm == nil {
		switch s.kind {
		case KindContentPart:
			return
		case KindGraphicFrame, KindOLEObject:
			xfrm = newEl(prefixFor(s.el, nsPresentationML, "p"), "xfrm")
			// p:xfrm follows the non-visual properties.
			var ref *etree.Element
			if kids := s.el.ChildElements(); len(kids) > 1 {
				ref = kids[1]
			}
			insertBefore(s.el, ref, xfrm)
		default:
			props := "spPr"
			if s.kind == KindGroup {
				props = "grpSpPr"
			}
			parent := child(s.el, nsPresentationML, props)
			if parent == nil {
				parent = addEl(s.el, prefixFor(s.el, nsPresentationML, "p"), props)
			}
			xfrm = newEl(prefixFor(s.el, nsDrawingML, "a"), "xfrm")
			parent.InsertChildAt(0, xfrm)
		}
	}
	writeXfrm(xfrm, prefixFor(s.el, nsDrawingML, "a"), t)
}

// graphicData returns a:graphic/a:graphicData of a graphic frame.
func (s *Shape) graphicData() *etree.Element {
	return childPath(s.el, nsDrawingML, "graphic", "graphicData")
}

func (s *Shape) graphicDataURI() string {
	gd := s.graphicData()
	if gd == nil {
		return ""
	}
	return gd.SelectAttrValue("uri", "")
}

// shapesIn returns the shape children of a spTree or grpSp element.
func shapesIn(parent *etree.Element) []*Shape {
	var out []*Shape
	for _, c := range parent.ChildElements() {
		if s := newShape(c); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// flatten returns shapes and all group descendants, depth-first.
func flatten(shapes []*Shape) []*Shape {
	var out []*Shape
	for _, s := range shapes {
		out = append(out, s)
		if s.kind == KindGroup {
			out = append(out, flatten(s.Children())...)
		}
	}
	return out
}

// alternateBlocks returns the mc:AlternateContent elements standing in for
// shapes in a spTree or grpSp, nested groups included. Blocks inside graphic
// frames belong to the frame and are not listed.
func alternateBlocks(parent *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		switch {
		case is(c, nsMarkupCompat, "AlternateContent"):
			out = append(out, c)
		case is(c, nsPresentationML, "grpSp"):
			out = append(out, alternateBlocks(c)...)
		}
	}
	return out
}

// branchShapes returns the shapes of every mc:Choice and mc:Fallback of a
// block, group descendants included. The branches are renditions of one
// shape, so they normally repeat the same ids.
func branchShapes(block *etree.Element) []*Shape {
	var out []*Shape
	for _, br := range block.ChildElements() {
		if is(br, nsMarkupCompat, "Choice") || is(br, nsMarkupCompat, "Fallback") {
			out = append(out, flatten(shapesIn(br))...)
		}
	}
	return out
}

// blockIDs returns the distinct ids held in a block with the first name seen
// for each, in document order.
func blockIDs(block *etree.Element) (ids []int, names map[int]string) {
	names = make(map[int]string)
	for _, sh := range branchShapes(block) {
		id := sh.ID()
		if _, ok := names[id]; ok {
			continue
		}
		names[id] = sh.Name()
		ids = append(ids, id)
	}
	return ids, names
}

// onlyFrames reports whether every branch shape of a block is a graphic
// frame. Such blocks wrap charts or objects and are not copied.
func onlyFrames(block *etree.Element) bool {
	for _, sh := range branchShapes(block) {
		if sh.kind != KindGraphicFrame && sh.kind != KindOLEObject {
			return false
		}
	}
	return true
}
