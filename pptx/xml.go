package pptx

import (
	"strconv"

	"github.com/beevik/etree"
)

// Element helpers. Matching is on the local name plus the namespace the
// element's prefix resolves to, so documents using unusual prefixes still work.

// boundNS returns the namespace declared for prefix in scope of el, or "".
func boundNS(el *etree.Element, prefix string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// lookupNS resolves prefix by walking up from el.
func lookupNS(el *etree.Element, prefix string) string {
	if ns := boundNS(el, prefix); ns != "" {
		return ns
	}
	switch prefix {
	// Conventional prefixes, used when a detached copy lost its ancestors.
	case "p":
		return nsPresentationML
	case "a":
		return nsDrawingML
	case "r":
		return nsRelationships
	case "dsp":
		return nsDiagramDrawing
	case "mc":
		return nsMarkupCompat
	}
	return ""
}

// nsOf returns the namespace URI of el.
func nsOf(el *etree.Element) string {
	return lookupNS(el, el.Space)
}

// is reports whether el is {ns}local.
func is(el *etree.Element, ns, local string) bool {
	return el != nil && el.Tag == local && nsOf(el) == ns
}

// child returns the first child element {ns}local.
func child(el *etree.Element, ns, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if is(c, ns, local) {
			return c
		}
	}
	return nil
}

// path follows a chain of child elements in the same namespace.
func childPath(el *etree.Element, ns string, locals ...string) *etree.Element {
	for _, l := range locals {
		el = child(el, ns, l)
		if el == nil {
			return nil
		}
	}
	return el
}

// descendants returns every element below el (depth-first, document order)
// matching {ns}local.
func descendants(el *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	walk(el, func(e *etree.Element) {
		if e != el && is(e, ns, local) {
			out = append(out, e)
		}
	})
	return out
}

// walk visits el and all its descendants in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}

// prefixFor returns the prefix bound to ns in scope of el, declaring
// preferred on the document root when the namespace is not yet bound.
func prefixFor(el *etree.Element, ns, preferred string) string {
	var root *etree.Element
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if a.Space == "xmlns" && a.Value == ns {
				return a.Key
			}
		}
		root = e
	}
	if root != nil {
		root.CreateAttr("xmlns:"+preferred, ns)
	}
	return preferred
}

// newEl creates a detached element with a prefixed name.
func newEl(prefix, local string) *etree.Element {
	if prefix == "" {
		return etree.NewElement(local)
	}
	return etree.NewElement(prefix + ":" + local)
}

// addEl appends a new prefixed child to parent.
func addEl(parent *etree.Element, prefix, local string) *etree.Element {
	el := newEl(prefix, local)
	parent.AddChild(el)
	return el
}

// insertBefore inserts el in parent immediately before ref, or appends it when
// ref is nil.
func insertBefore(parent, ref, el *etree.Element) {
	if ref == nil {
		parent.AddChild(el)
		return
	}
	parent.InsertChildAt(ref.Index(), el)
}

// relAttrs returns pointers to every attribute in el's subtree that lives in
// the relationships namespace (r:id, r:embed, r:link, r:dm, ...).
func relAttrs(el *etree.Element) []*etree.Attr {
	var out []*etree.Attr
	walk(el, func(e *etree.Element) {
		for i := range e.Attr {
			a := &e.Attr[i]
			if a.Space != "" && a.Space != "xmlns" && lookupNS(e, a.Space) == nsRelationships {
				out = append(out, a)
			}
		}
	})
	return out
}

// attr returns the value of an unprefixed attribute. SelectAttrValue would
// also match r:id when asked for id.
func attr(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == key {
			return a.Value
		}
	}
	return ""
}

// attrInt reads an integer attribute, returning def when absent or invalid.
func attrInt(el *etree.Element, key string, def int64) int64 {
	v, err := strconv.ParseInt(attr(el, key), 10, 64)
	if err != nil {
		return def
	}
	return v
}

// readXfrm reads an a:xfrm or p:xfrm element.
func readXfrm(xfrm *etree.Element) (Transform, bool) {
	if xfrm == nil {
		return Transform{}, false
	}
	off := child(xfrm, nsDrawingML, "off")
	ext := child(xfrm, nsDrawingML, "ext")
	if off == nil && ext == nil {
		return Transform{}, false
	}
	return Transform{
		X:  attrInt(off, "x", 0),
		Y:  attrInt(off, "y", 0),
		CX: attrInt(ext, "cx", 0),
		CY: attrInt(ext, "cy", 0),
	}, true
}

// writeXfrm replaces the off/ext children of xfrm.
func writeXfrm(xfrm *etree.Element, a string, t Transform) {
	for _, c := range xfrm.ChildElements() {
		if is(c, nsDrawingML, "off") || is(c, nsDrawingML, "ext") {
			xfrm.RemoveChild(c)
		}
	}
	off := newEl(a, "off")
	off.CreateAttr("x", strconv.FormatInt(t.X, 10))
	off.CreateAttr("y", strconv.FormatInt(t.Y, 10))
	ext := newEl(a, "ext")
	ext.CreateAttr("cx", strconv.FormatInt(t.CX, 10))
	ext.CreateAttr("cy", strconv.FormatInt(t.CY, 10))
	xfrm.InsertChildAt(0, ext)
	xfrm.InsertChildAt(0, off)
}
