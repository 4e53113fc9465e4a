package pptx

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// CopyShapeTree replaces the shapes of dst with copies of the shapes of src.
//
// Shapes are deep-copied in source order with their relationship references
// rewritten through relIDs, as returned by Relink (see rewriteRelIDs for
// references with no mapping). Pictures, top level or directly inside a
// group, get their image bytes re-embedded into dst's package. Graphic frames
// (tables, charts, diagrams, OLE objects) are not copied. Shapes wrapped in
// mc:AlternateContent are copied with the whole block. Every copied shape gets
// a fresh id and connector endpoints follow the renumbering.
func CopyShapeTree(src, dst *Slide, relIDs map[string]string) error {
	dst.ClearShapes()
	alloc := NewIDAllocator(dst)
	ids := make(map[int]int)

	for _, el := range src.tree().ChildElements() {
		if is(el, nsMarkupCompat, "AlternateContent") {
			if onlyFrames(el) {
				continue
			}
			block := el.Copy()
			rewriteRelIDs(block, relIDs)
			insertBefore(dst.tree(), dst.extLst(), block)
			carryNamespaces(el, block)
			for old, id := range alloc.renumberBlock(block) {
				ids[old] = id
			}
			continue
		}

		sh := newShape(el)
		if sh == nil {
			continue
		}
		var copied *Shape
		switch sh.kind {
		case KindGraphicFrame, KindOLEObject:
			continue
		case KindPicture:
			pic, err := copyPicture(src, dst, sh, relIDs)
			if err != nil {
				return err
			}
			copied = pic
		default:
			el := sh.el.Copy()
			rewriteRelIDs(el, relIDs)
			copied = dst.insertElement(el)
			carryNamespaces(sh.el, el)
			if copied.kind == KindGroup {
				if err := reembedGroupPictures(src, dst, sh, copied); err != nil {
					return err
				}
			}
		}
		for old, id := range alloc.renumber(copied) {
			ids[old] = id
		}
	}

	remapConnections(dst, ids)
	return nil
}

// carryNamespaces declares on the document root of dup every prefix used in
// its subtree that is only bound in the source document of orig. Prefixes
// named in mc:Choice/@Requires count as used.
func carryNamespaces(orig, dup *etree.Element) {
	root := dup
	for root.Parent() != nil {
		root = root.Parent()
	}
	need := func(e *etree.Element, prefix string) {
		switch prefix {
		case "", "xml", "xmlns":
			return
		}
		if boundNS(e, prefix) != "" {
			return
		}
		if ns := boundNS(orig, prefix); ns != "" {
			root.CreateAttr("xmlns:"+prefix, ns)
		}
	}
	walk(dup, func(e *etree.Element) {
		need(e, e.Space)
		for _, a := range e.Attr {
			need(e, a.Space)
		}
		if is(e, nsMarkupCompat, "Choice") {
			for _, prefix := range strings.Fields(attr(e, "Requires")) {
				need(e, prefix)
			}
		}
	})
}

// blipOf returns p:blipFill/a:blip of a picture element.
func blipOf(pic *etree.Element) *etree.Element {
	return child(child(pic, nsPresentationML, "blipFill"), nsDrawingML, "blip")
}

func embedAttr(blip *etree.Element) string {
	if blip == nil {
		return ""
	}
	for _, a := range blip.Attr {
		if a.Key == "embed" && lookupNS(blip, a.Space) == nsRelationships {
			return a.Value
		}
	}
	return ""
}

// copyPicture deep-copies a picture and re-embeds its image in dst.
func copyPicture(src, dst *Slide, sh *Shape, relIDs map[string]string) (*Shape, error) {
	el := sh.el.Copy()
	rewriteRelIDs(el, relIDs)
	pic := dst.insertElement(el)
	carryNamespaces(sh.el, el)
	if err := reembedPicture(src, dst, sh.el, el); err != nil {
		return nil, err
	}
	return pic, nil
}

// reembedGroupPictures re-embeds pictures directly inside a copied group.
func reembedGroupPictures(src, dst *Slide, orig, copied *Shape) error {
	origKids, copiedKids := orig.Children(), copied.Children()
	for i, kid := range origKids {
		if kid.kind != KindPicture || i >= len(copiedKids) {
			continue
		}
		if err := reembedPicture(src, dst, kid.el, copiedKids[i].el); err != nil {
			return err
		}
	}
	return nil
}

// reembedPicture stages the source picture's image bytes in a temporary file,
// reads them back into a media part of dst and points the copy's blip at it.
// Linked pictures are left as they are.
func reembedPicture(src, dst *Slide, orig, copied *etree.Element) error {
	rID := embedAttr(blipOf(orig))
	if rID == "" {
		return nil
	}
	part, err := src.part.Relationships().TargetPart(rID)
	if err != nil {
		return fmt.Errorf("%s: picture %q: %w", src.Name(), cNvPrOf(orig).SelectAttrValue("name", ""), err)
	}
	data, err := part.Data()
	if err != nil {
		return err
	}

	staged, cleanup, err := stagePayload(data, "slidekit-picture-*")
	if err != nil {
		return err
	}
	defer cleanup()
	if data, err = os.ReadFile(staged); err != nil {
		return fmt.Errorf("reading staged picture: %w", err)
	}

	media, err := dst.mediaPart(data, part.Ext(), part.ContentType())
	if err != nil {
		return err
	}
	setEmbed(blipOf(copied), dst.part.Relationships().AddInternal(RelTypeImage, media))
	return nil
}

func setEmbed(blip *etree.Element, rID string) {
	if blip == nil {
		return
	}
	for i := range blip.Attr {
		if blip.Attr[i].Key == "embed" && lookupNS(blip, blip.Attr[i].Space) == nsRelationships {
			blip.Attr[i].Value = rID
			return
		}
	}
	blip.CreateAttr(prefixFor(blip, nsRelationships, "r")+":embed", rID)
}

// optionalRefs lists the elements whose relationship attribute may simply be
// left out: a hyperlink without a target, a blip without an image.
var optionalRefs = map[string]bool{
	"hlinkClick":     true,
	"hlinkHover":     true,
	"hlinkMouseOver": true,
	"blip":           true,
}

// rewriteRelIDs maps every r:* attribute in el's subtree through relIDs.
// References with no mapping are removed: the attribute alone where the
// schema lets it be absent, otherwise the element carrying it (p:tags,
// a:videoFile, ...). A list left empty by that, such as p:custDataLst, goes
// too. Empty references are left alone.
func rewriteRelIDs(el *etree.Element, relIDs map[string]string) {
	type dangling struct {
		el  *etree.Element
		key string
	}
	var (
		dropAttrs []dangling
		dropEls   []*etree.Element
	)
	walk(el, func(e *etree.Element) {
		for i := range e.Attr {
			a := &e.Attr[i]
			if a.Space == "" || a.Space == "xmlns" || a.Value == "" || lookupNS(e, a.Space) != nsRelationships {
				continue
			}
			if id, ok := relIDs[a.Value]; ok {
				a.Value = id
				continue
			}
			if optionalRefs[e.Tag] || e == el {
				dropAttrs = append(dropAttrs, dangling{e, a.FullKey()})
				continue
			}
			dropEls = append(dropEls, e)
		}
	})
	for _, d := range dropAttrs {
		d.el.RemoveAttr(d.key)
	}
	for _, e := range dropEls {
		parent := e.Parent()
		if parent == nil {
			continue
		}
		parent.RemoveChild(e)
		if parent != el && strings.HasSuffix(parent.Tag, "Lst") && len(parent.ChildElements()) == 0 {
			if gp := parent.Parent(); gp != nil {
				gp.RemoveChild(parent)
			}
		}
	}
}

// remapConnections updates connector start/end references after renumbering.
func remapConnections(s *Slide, ids map[int]int) {
	for _, sh := range s.AllShapes() {
		if sh.kind != KindConnector {
			continue
		}
		for _, local := range []string{"stCxn", "endCxn"} {
			for _, c := range descendants(sh.el, nsDrawingML, local) {
				old := int(attrInt(c, "id", 0))
				if id, ok := ids[old]; ok {
					c.CreateAttr("id", strconv.Itoa(id))
				}
			}
		}
	}
}

// DuplicateSlide appends to p a copy of src, which may belong to another
// presentation. The new slide uses p's blank layout; its inherited
// placeholders are cleared before the copy.
func (p *Presentation) DuplicateSlide(src *Slide) (*Slide, error) {
	layout, err := p.BlankLayout()
	if err != nil {
		return nil, err
	}
	dst, err := p.AddSlide(layout)
	if err != nil {
		return nil, err
	}
	dst.ClearShapes()
	relIDs, err := Relink(src, dst)
	if err != nil {
		return nil, err
	}
	if err := CopyShapeTree(src, dst, relIDs); err != nil {
		return nil, err
	}
	if err := dst.ValidateIDs(); err != nil {
		return nil, err
	}
	return dst, nil
}
