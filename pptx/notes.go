package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/tsawler/slidekit/opc"
)

// notesPart returns the slide's notes slide part, or nil.
func (s *Slide) notesPart() *opc.Part {
	rels := s.part.Relationships()
	for _, rel := range rels.ByType(RelTypeNotesSlide) {
		if part, err := rels.TargetPart(rel.ID); err == nil {
			return part
		}
	}
	return nil
}

// HasNotes reports whether the slide has a notes slide.
func (s *Slide) HasNotes() bool {
	return s.notesPart() != nil
}

// notesBody returns the body placeholder of a notes slide.
func notesBody(doc *etree.Document) *Shape {
	tree := childPath(doc.Root(), nsPresentationML, "cSld", "spTree")
	if tree == nil {
		return nil
	}
	for _, sh := range shapesIn(tree) {
		if sh.kind == KindShape && sh.PlaceholderType() == "body" {
			return sh
		}
	}
	return nil
}

// Notes returns the speaker notes text, or "" when the slide has none.
func (s *Slide) Notes() string {
	part := s.notesPart()
	if part == nil {
		return ""
	}
	doc, err := part.XML()
	if err != nil {
		return ""
	}
	body := notesBody(doc)
	if body == nil {
		return ""
	}
	return strings.TrimSpace(body.Text())
}

// SetNotes replaces the speaker notes, creating the notes slide on first use.
func (s *Slide) SetNotes(text string) error {
	part := s.notesPart()
	if part == nil {
		var err error
		if part, err = s.addNotesPart(); err != nil {
			return err
		}
	}
	doc, err := part.XML()
	if err != nil {
		return err
	}
	body := notesBody(doc)
	if body == nil {
		tree := childPath(doc.Root(), nsPresentationML, "cSld", "spTree")
		body = newShape(insertNotesBody(tree, 3))
	}
	body.SetText(text)
	return nil
}

func (s *Slide) addNotesPart() (*opc.Part, error) {
	pkg := s.part.Package()
	name := pkg.NextPartName("ppt/notesSlides/notesSlide%d.xml")

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("p:notes")
	root.CreateAttr("xmlns:a", nsDrawingML)
	root.CreateAttr("xmlns:r", nsRelationships)
	root.CreateAttr("xmlns:p", nsPresentationML)
	tree := addEl(addEl(root, "p", "cSld"), "p", "spTree")
	nv := addEl(tree, "p", "nvGrpSpPr")
	c := addEl(nv, "p", "cNvPr")
	c.CreateAttr("id", "1")
	c.CreateAttr("name", "")
	addEl(nv, "p", "cNvGrpSpPr")
	addEl(nv, "p", "nvPr")
	addEl(addEl(tree, "p", "grpSpPr"), "a", "xfrm")

	img := addEl(tree, "p", "sp")
	imgNv := addEl(img, "p", "nvSpPr")
	ic := addEl(imgNv, "p", "cNvPr")
	ic.CreateAttr("id", "2")
	ic.CreateAttr("name", "Slide Image Placeholder 1")
	locks := addEl(addEl(imgNv, "p", "cNvSpPr"), "a", "spLocks")
	locks.CreateAttr("noGrp", "1")
	locks.CreateAttr("noRot", "1")
	locks.CreateAttr("noChangeAspect", "1")
	addEl(addEl(imgNv, "p", "nvPr"), "p", "ph").CreateAttr("type", "sldImg")
	addEl(img, "p", "spPr")

	insertNotesBody(tree, 3)
	addEl(addEl(root, "p", "clrMapOvr"), "a", "masterClrMapping")

	part, err := pkg.AddPart(name, ContentTypeNotesSlide, nil)
	if err != nil {
		return nil, err
	}
	part.SetXML(doc)
	if master := s.pres.notesMaster(); master != nil {
		part.Relationships().AddInternal(RelTypeNotesMaster, master)
	}
	part.Relationships().AddInternal(RelTypeSlide, s.part)
	s.part.Relationships().AddInternal(RelTypeNotesSlide, part)
	return part, nil
}

// insertNotesBody appends an empty body placeholder to a notes shape tree.
func insertNotesBody(tree *etree.Element, id int) *etree.Element {
	sp := addEl(tree, "p", "sp")
	nv := addEl(sp, "p", "nvSpPr")
	c := addEl(nv, "p", "cNvPr")
	c.CreateAttr("id", strconv.Itoa(id))
	c.CreateAttr("name", "Notes Placeholder "+strconv.Itoa(id-1))
	addEl(addEl(nv, "p", "cNvSpPr"), "a", "spLocks").CreateAttr("noGrp", "1")
	ph := addEl(addEl(nv, "p", "nvPr"), "p", "ph")
	ph.CreateAttr("type", "body")
	ph.CreateAttr("idx", "1")
	addEl(sp, "p", "spPr")
	body := addEl(sp, "p", "txBody")
	addEl(body, "a", "bodyPr")
	addEl(body, "a", "lstStyle")
	addEl(body, "a", "p")
	return sp
}
