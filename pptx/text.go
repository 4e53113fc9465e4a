package pptx

import (
	"strings"

	"github.com/beevik/etree"
)

// HasTextFrame reports whether the shape carries a text body.
func (s *Shape) HasTextFrame() bool {
	return s.kind == KindShape && s.txBody() != nil
}

func (s *Shape) txBody() *etree.Element {
	return child(s.el, nsPresentationML, "txBody")
}

// Text returns the text of the shape: paragraphs joined with newlines, line
// breaks within a paragraph rendered as newlines too. Tables inside graphic
// frames and nested group shapes are not included; see Slide.Text.
func (s *Shape) Text() string {
	return textBodyText(s.txBody())
}

func textBodyText(body *etree.Element) string {
	if body == nil {
		return ""
	}
	var paras []string
	for _, p := range body.ChildElements() {
		if !is(p, nsDrawingML, "p") {
			continue
		}
		paras = append(paras, paragraphText(p))
	}
	return strings.Join(paras, "\n")
}

func paragraphText(p *etree.Element) string {
	var text strings.Builder
	for _, c := range p.ChildElements() {
		switch {
		case is(c, nsDrawingML, "r"), is(c, nsDrawingML, "fld"):
			if t := child(c, nsDrawingML, "t"); t != nil {
				text.WriteString(t.Text())
			}
		case is(c, nsDrawingML, "br"):
			text.WriteString("\n")
		}
	}
	return text.String()
}

// ClearText removes every paragraph but the first and empties that one,
// keeping its paragraph properties so the frame's formatting survives.
func (s *Shape) ClearText() {
	body := s.txBody()
	if body == nil {
		return
	}
	var first *etree.Element
	for _, p := range body.ChildElements() {
		if !is(p, nsDrawingML, "p") {
			continue
		}
		if first == nil {
			first = p
			continue
		}
		body.RemoveChild(p)
	}
	if first == nil {
		addEl(body, prefixFor(body, nsDrawingML, "a"), "p")
		return
	}
	for _, c := range first.ChildElements() {
		if !is(c, nsDrawingML, "pPr") && !is(c, nsDrawingML, "endParaRPr") {
			first.RemoveChild(c)
		}
	}
}

// SetText clears the frame and writes text as a single run per paragraph.
// Newlines in text start new paragraphs that repeat the first paragraph's
// properties. A missing txBody is created.
func (s *Shape) SetText(text string) {
	if s.kind != KindShape {
		return
	}
	body := s.txBody()
	a := prefixFor(s.el, nsDrawingML, "a")
	if body == nil {
		body = addEl(s.el, prefixFor(s.el, nsPresentationML, "p"), "txBody")
		addEl(body, a, "bodyPr")
		addEl(body, a, "lstStyle")
		addEl(body, a, "p")
	}
	s.ClearText()

	var first *etree.Element
	for _, p := range body.ChildElements() {
		if is(p, nsDrawingML, "p") {
			first = p
			break
		}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	p := first
	for i, line := range lines {
		if i > 0 {
			next := newEl(a, "p")
			if pPr := child(first, nsDrawingML, "pPr"); pPr != nil {
				next.AddChild(pPr.Copy())
			}
			body.AddChild(next)
			p = next
		}
		appendRun(p, a, line)
	}
}

// appendRun adds <a:r><a:t>text</a:t></a:r> before any endParaRPr.
func appendRun(p *etree.Element, a, text string) {
	r := newEl(a, "r")
	t := addEl(r, a, "t")
	t.SetText(text)
	insertBefore(p, child(p, nsDrawingML, "endParaRPr"), r)
}
