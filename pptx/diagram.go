package pptx

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/tsawler/slidekit/opc"
)

// ErrDiagramDrawingMissing is reported when a diagram frame has no backing
// drawing part. The frame is still removed.
var ErrDiagramDrawingMissing = errors.New("diagram drawing not found")

// FlattenOptions controls FlattenDiagrams.
type FlattenOptions struct {
	// PropagateTransform positions the replacement group where the diagram
	// frame was. When false the group gets an empty a:xfrm.
	PropagateTransform bool

	// OnMissingDrawing is called for every diagram frame removed without a
	// replacement. The error wraps ErrDiagramDrawingMissing.
	OnMissingDrawing func(frame *Shape, err error)
}

// DefaultFlattenOptions returns the options used by the editor.
func DefaultFlattenOptions() FlattenOptions {
	return FlattenOptions{PropagateTransform: true}
}

// FlattenDiagrams replaces every SmartArt frame on the slide by a group of
// plain shapes built from the diagram's pre-rendered drawing part, and
// returns the number of frames replaced. The diagram data, layout, style,
// color and drawing relationships are dropped from the slide afterwards, so
// their parts leave the file on save. Frames nested in groups are flattened
// in place. Running it again is a no-op.
func FlattenDiagrams(s *Slide, opts FlattenOptions) (int, error) {
	flattened := 0
	for _, frame := range s.AllShapes() {
		if !frame.IsDiagram() {
			continue
		}
		ok, err := flattenDiagram(s, frame, opts)
		if err != nil {
			return flattened, err
		}
		if ok {
			flattened++
		}
	}
	return flattened, nil
}

func flattenDiagram(s *Slide, frame *Shape, opts FlattenOptions) (bool, error) {
	frameID := frame.ID()
	t, _ := frame.Transform()
	relIDs := diagramRelIDs(frame)
	drawing, drawingRelID := s.diagramDrawing(frame)
	parent, at := frame.el.Parent(), frame.el.Index()

	s.RemoveShape(frame)
	defer s.removeRels(append(relIDs, drawingRelID)...)

	if drawing == nil {
		if opts.OnMissingDrawing != nil {
			opts.OnMissingDrawing(frame, fmt.Errorf("%s: frame %q (id %d): %w", s.Name(), frame.Name(), frameID, ErrDiagramDrawingMissing))
		}
		return false, nil
	}

	alloc := NewIDAllocator(s)
	groupID := alloc.Next()

	doc, err := drawing.XML()
	if err != nil {
		return false, fmt.Errorf("flattening diagram %q: %w", frame.Name(), err)
	}
	tree := child(doc.Root(), nsDiagramDrawing, "spTree")
	if tree == nil {
		return false, fmt.Errorf("flattening diagram %q: %s has no shape tree", frame.Name(), drawing.Name())
	}
	s.declareNamespaces(doc.Root())
	dsp := boundPrefix(doc.Root(), nsDiagramDrawing)

	p := prefixFor(s.tree(), nsPresentationML, "p")
	a := prefixFor(s.tree(), nsDrawingML, "a")
	group := newDiagramGroup(p, a, groupID, "Flattened Diagram "+strconv.Itoa(frameID), t, opts.PropagateTransform)

	var shapes []*etree.Element
	for _, c := range tree.ChildElements() {
		if is(c, nsDiagramDrawing, "sp") || is(c, nsDiagramDrawing, "grpSp") {
			shapes = append(shapes, c.Copy())
		}
	}
	for _, el := range shapes {
		// Resolve relationship references against the drawing before the
		// copy loses its dsp namespace.
		if err := s.adoptRels(el, drawing); err != nil {
			return false, fmt.Errorf("flattening diagram %q: %w", frame.Name(), err)
		}
		remapDiagramElement(el, dsp, p)
		group.AddChild(el)
	}
	if parent == s.tree() {
		s.insertElement(group)
	} else {
		parent.InsertChildAt(at, group)
	}

	n := 0
	for _, sh := range flatten(shapesIn(group)) {
		n++
		sh.SetID(alloc.Next())
		sh.SetName("Diagram Shape " + strconv.Itoa(n))
	}
	return true, nil
}

// diagramRelIDs returns the r:dm, r:lo, r:qs and r:cs ids of a diagram frame.
func diagramRelIDs(frame *Shape) []string {
	gd := frame.graphicData()
	if gd == nil {
		return nil
	}
	var ids []string
	for _, relIds := range gd.ChildElements() {
		if relIds.Tag != "relIds" {
			continue
		}
		for _, attr := range relAttrs(relIds) {
			ids = append(ids, attr.Value)
		}
	}
	return ids
}

// diagramDrawing finds the drawing part backing a diagram frame. The data
// model part names the slide relationship of its drawing in
// dsp:dataModelExt/@relId; without it the drawing whose number matches the
// data part is used, then the only drawing of the slide.
func (s *Slide) diagramDrawing(frame *Shape) (*opc.Part, string) {
	rels := s.part.Relationships()
	drawings := rels.ByType(RelTypeDiagramDrawing)
	if len(drawings) == 0 {
		return nil, ""
	}

	var data *opc.Part
	for _, id := range diagramRelIDs(frame) {
		rel, ok := rels.Get(id)
		if !ok || rel.Type != RelTypeDiagramData {
			continue
		}
		data, _ = rels.TargetPart(id)
	}

	if data != nil {
		if doc, err := data.XML(); err == nil {
			for _, ext := range descendants(doc.Root(), nsDiagramDrawing, "dataModelExt") {
				id := ext.SelectAttrValue("relId", "")
				if part, err := rels.TargetPart(id); err == nil {
					return part, id
				}
			}
		}
		want := partNumber(data.Name())
		for _, rel := range drawings {
			if partNumber(rels.TargetName(rel)) == want {
				if part, err := rels.TargetPart(rel.ID); err == nil {
					return part, rel.ID
				}
			}
		}
	}

	if len(drawings) == 1 && isDrawingTarget(drawings[0].Target) {
		if part, err := rels.TargetPart(drawings[0].ID); err == nil {
			return part, drawings[0].ID
		}
	}
	return nil, ""
}

func isDrawingTarget(target string) bool {
	return strings.HasPrefix(path.Base(target), "drawing") && strings.Contains(target, "diagrams/")
}

// removeRels drops relationships no shape on the slide references any more.
func (s *Slide) removeRels(ids ...string) {
	used := make(map[string]bool)
	for _, attr := range relAttrs(s.tree()) {
		used[attr.Value] = true
	}
	for _, id := range ids {
		if id != "" && !used[id] {
			s.part.Relationships().Remove(id)
		}
	}
}

// adoptRels re-registers relationships referenced inside el, which belong to
// from, on the slide and rewrites the references.
func (s *Slide) adoptRels(el *etree.Element, from *opc.Part) error {
	src := from.Relationships()
	dst := s.part.Relationships()
	for _, attr := range relAttrs(el) {
		rel, ok := src.Get(attr.Value)
		if !ok {
			continue
		}
		if rel.External {
			attr.Value = dst.AddExternal(rel.Type, rel.Target)
			continue
		}
		part, err := src.TargetPart(rel.ID)
		if err != nil {
			return err
		}
		attr.Value = dst.AddInternal(rel.Type, part)
	}
	return nil
}

// declareNamespaces copies namespace declarations of the drawing root onto
// the slide root when the prefix is not bound there yet.
func (s *Slide) declareNamespaces(from *etree.Element) {
	root := s.doc.Root()
	for _, attr := range from.Attr {
		if attr.Space != "xmlns" || attr.Value == nsDiagramDrawing {
			continue
		}
		if root.SelectAttr("xmlns:"+attr.Key) == nil {
			root.CreateAttr("xmlns:"+attr.Key, attr.Value)
		}
	}
}

// remapDiagramElement moves el and its descendants from the diagram drawing
// namespace to PresentationML. Text transforms have no slide equivalent and
// are dropped, as are model ids. Non-visual shape properties gain an empty
// p:nvPr.
func remapDiagramElement(el *etree.Element, dsp, p string) {
	var drop []*etree.Element
	walk(el, func(e *etree.Element) {
		if e.Space != dsp {
			return
		}
		if e.Tag == "txXfrm" {
			drop = append(drop, e)
			return
		}
		e.RemoveAttr("modelId")
		e.Space = p
	})
	for _, e := range drop {
		e.Parent().RemoveChild(e)
	}
	walk(el, func(e *etree.Element) {
		if e.Space != p || !strings.HasPrefix(e.Tag, "nv") || !strings.HasSuffix(e.Tag, "Pr") {
			return
		}
		for _, c := range e.ChildElements() {
			if c.Tag == "nvPr" {
				return
			}
		}
		addEl(e, p, "nvPr")
	})
}

// boundPrefix returns the prefix el declares for ns, "dsp" when it declares
// none.
func boundPrefix(el *etree.Element, ns string) string {
	for _, attr := range el.Attr {
		if attr.Space == "xmlns" && attr.Value == ns {
			return attr.Key
		}
		if attr.Space == "" && attr.Key == "xmlns" && attr.Value == ns {
			return ""
		}
	}
	return "dsp"
}

// newDiagramGroup builds an empty p:grpSp for flattened diagram shapes.
// Drawing coordinates are relative to the diagram frame, so the child space
// starts at the origin and spans the frame.
func newDiagramGroup(p, a string, id int, name string, t Transform, propagate bool) *etree.Element {
	g := newEl(p, "grpSp")
	nv := addEl(g, p, "nvGrpSpPr")
	c := addEl(nv, p, "cNvPr")
	c.CreateAttr("id", strconv.Itoa(id))
	c.CreateAttr("name", name)
	addEl(nv, p, "cNvGrpSpPr")
	addEl(nv, p, "nvPr")
	xfrm := addEl(addEl(g, p, "grpSpPr"), a, "xfrm")
	if propagate {
		writeXfrm(xfrm, a, t)
		chOff := addEl(xfrm, a, "chOff")
		chOff.CreateAttr("x", "0")
		chOff.CreateAttr("y", "0")
		chExt := addEl(xfrm, a, "chExt")
		chExt.CreateAttr("cx", strconv.FormatInt(t.CX, 10))
		chExt.CreateAttr("cy", strconv.FormatInt(t.CY, 10))
	}
	return g
}
