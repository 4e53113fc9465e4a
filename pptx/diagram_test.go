package pptx

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/tsawler/slidekit/internal/pptxtest"
)

const (
	ctDiagramData    = "application/vnd.openxmlformats-officedocument.drawingml.diagramData+xml"
	ctDiagramLayout  = "application/vnd.openxmlformats-officedocument.drawingml.diagramLayout+xml"
	ctDiagramStyle   = "application/vnd.openxmlformats-officedocument.drawingml.diagramStyle+xml"
	ctDiagramColors  = "application/vnd.openxmlformats-officedocument.drawingml.diagramColors+xml"
	ctDiagramDrawing = "application/vnd.ms-office.drawingml.diagramDrawing+xml"
)

func diagramRels(withDrawing bool) []pptxtest.Rel {
	rels := []pptxtest.Rel{
		{ID: "rId2", Type: pptxtest.RelDiagramData, Target: "../diagrams/data1.xml"},
		{ID: "rId3", Type: pptxtest.RelDiagramLayout, Target: "../diagrams/layout1.xml"},
		{ID: "rId4", Type: pptxtest.RelDiagramStyle, Target: "../diagrams/quickStyle1.xml"},
		{ID: "rId5", Type: pptxtest.RelDiagramColors, Target: "../diagrams/colors1.xml"},
	}
	if withDrawing {
		rels = append(rels, pptxtest.Rel{ID: "rId6", Type: pptxtest.RelDiagramDrawing, Target: "../diagrams/drawing1.xml"})
	}
	return rels
}

func diagramParts(drawing []byte, drawingRels ...pptxtest.Rel) []pptxtest.Part {
	stub := func(root string) []byte {
		return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><dgm:%s xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram"/>`, root))
	}
	parts := []pptxtest.Part{
		{Name: "ppt/diagrams/data1.xml", ContentType: ctDiagramData, Data: pptxtest.DiagramData("rId6")},
		{Name: "ppt/diagrams/layout1.xml", ContentType: ctDiagramLayout, Data: stub("layoutDef")},
		{Name: "ppt/diagrams/quickStyle1.xml", ContentType: ctDiagramStyle, Data: stub("styleDef")},
		{Name: "ppt/diagrams/colors1.xml", ContentType: ctDiagramColors, Data: stub("colorsDef")},
	}
	if drawing != nil {
		parts = append(parts, pptxtest.Part{Name: "ppt/diagrams/drawing1.xml", ContentType: ctDiagramDrawing, Data: drawing, Rels: drawingRels})
	}
	return parts
}

func diagramDeck() pptxtest.Deck {
	return pptxtest.Deck{
		Slides: []pptxtest.Slide{{
			Shapes: pptxtest.TextBox(2, "Title 1", "Process") +
				pptxtest.TextBox(3, "TextBox 2", "note") +
				pptxtest.DiagramFrame(4, "Diagram 3", "rId2", "rId3", "rId4", "rId5", 1000, 2000, 3000000, 1500000),
			Rels: diagramRels(true),
		}},
		Parts: diagramParts(pptxtest.DiagramDrawing("Plan", "Build")),
	}
}

func TestFlattenDiagrams(t *testing.T) {
	p := openDeck(t, diagramDeck())
	s := mustSlide(t, p, 0)

	n, err := FlattenDiagrams(s, DefaultFlattenOptions())
	if err != nil {
		t.Fatalf("FlattenDiagrams() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("FlattenDiagrams() = %d, want 1", n)
	}

	shapes := s.Shapes()
	if got := shapeNames(shapes); !equalStrings(got, []string{"Title 1", "TextBox 2", "Flattened Diagram 4"}) {
		t.Fatalf("shapes = %v", got)
	}
	group := shapes[2]
	if group.Kind() != KindGroup {
		t.Fatalf("Kind() = %v, want group", group.Kind())
	}
	if group.ID() != 4 {
		t.Errorf("group id = %d, want 4", group.ID())
	}
	tr, ok := group.Transform()
	want := Transform{X: 1000, Y: 2000, CX: 3000000, CY: 1500000}
	if !ok || tr != want {
		t.Errorf("group Transform() = %+v, want %+v", tr, want)
	}

	kids := group.Children()
	if got := shapeNames(kids); !equalStrings(got, []string{"Diagram Shape 1", "Diagram Shape 2"}) {
		t.Fatalf("children = %v", got)
	}
	for i, text := range []string{"Plan", "Build"} {
		if kids[i].Kind() != KindShape {
			t.Errorf("child %d Kind() = %v, want shape", i, kids[i].Kind())
		}
		if kids[i].ID() != 5+i {
			t.Errorf("child %d id = %d, want %d", i, kids[i].ID(), 5+i)
		}
		if got := kids[i].Text(); got != text {
			t.Errorf("child %d Text() = %q, want %q", i, got, text)
		}
		if child(kids[i].Element().ChildElements()[0], nsPresentationML, "nvPr") == nil {
			t.Errorf("child %d has no p:nvPr", i)
		}
	}
	if err := s.ValidateIDs(); err != nil {
		t.Errorf("ValidateIDs() error = %v", err)
	}

	walk(group.Element(), func(e *etree.Element) {
		if nsOf(e) == nsDiagramDrawing {
			t.Errorf("element %s still in the diagram drawing namespace", e.FullTag())
		}
		if e.Tag == "txXfrm" {
			t.Error("txXfrm survived")
		}
		if e.SelectAttr("modelId") != nil {
			t.Error("modelId survived")
		}
	})

	rels := s.Part().Relationships()
	for _, id := range []string{"rId2", "rId3", "rId4", "rId5", "rId6"} {
		if _, ok := rels.Get(id); ok {
			t.Errorf("relationship %s still present", id)
		}
	}

	saved := reopen(t, p)
	for _, part := range saved.Package().Parts() {
		if strings.HasPrefix(part.Name(), "ppt/diagrams/") {
			t.Errorf("diagram part %s survived save", part.Name())
		}
	}
	ss := mustSlide(t, saved, 0)
	if got := shapeNames(ss.AllShapes()); !equalStrings(got, []string{"Title 1", "TextBox 2", "Flattened Diagram 4", "Diagram Shape 1", "Diagram Shape 2"}) {
		t.Errorf("shapes after save = %v", got)
	}

	// Nothing left to flatten.
	n, err = FlattenDiagrams(ss, DefaultFlattenOptions())
	if err != nil || n != 0 {
		t.Errorf("second FlattenDiagrams() = %d, %v; want 0, nil", n, err)
	}
}

func TestFlattenDiagrams_WithoutTransform(t *testing.T) {
	p := openDeck(t, diagramDeck())
	s := mustSlide(t, p, 0)

	if _, err := FlattenDiagrams(s, FlattenOptions{}); err != nil {
		t.Fatalf("FlattenDiagrams() error = %v", err)
	}
	group := s.Shapes()[2]
	if _, ok := group.Transform(); ok {
		t.Error("Transform() ok = true, want an empty xfrm")
	}
	xfrm := group.xfrmElement()
	if xfrm == nil || len(xfrm.ChildElements()) != 0 {
		t.Error("group xfrm missing or not empty")
	}
}

func TestFlattenDiagrams_MissingDrawing(t *testing.T) {
	d := pptxtest.Deck{
		Slides: []pptxtest.Slide{{
			Shapes: pptxtest.TextBox(2, "Title 1", "x") +
				pptxtest.DiagramFrame(3, "Diagram 2", "rId2", "rId3", "rId4", "rId5", 0, 0, 100, 100),
			Rels: diagramRels(false),
		}},
		Parts: diagramParts(nil),
	}
	p := openDeck(t, d)
	s := mustSlide(t, p, 0)

	var reported []error
	opts := DefaultFlattenOptions()
	opts.OnMissingDrawing = func(frame *Shape, err error) {
		if frame.Name() != "Diagram 2" {
			t.Errorf("callback frame = %q, want %q", frame.Name(), "Diagram 2")
		}
		reported = append(reported, err)
	}

	n, err := FlattenDiagrams(s, opts)
	if err != nil {
		t.Fatalf("FlattenDiagrams() error = %v", err)
	}
	if n != 0 {
		t.Errorf("FlattenDiagrams() = %d, want 0", n)
	}
	if len(reported) != 1 || !errors.Is(reported[0], ErrDiagramDrawingMissing) {
		t.Fatalf("reported = %v, want one ErrDiagramDrawingMissing", reported)
	}
	if got := shapeNames(s.Shapes()); !equalStrings(got, []string{"Title 1"}) {
		t.Errorf("shapes = %v, want [Title 1]", got)
	}
	if s.Part().Relationships().Len() != 1 {
		t.Errorf("slide keeps %d relationships, want only the layout", s.Part().Relationships().Len())
	}
}

func TestFlattenDiagrams_AdoptsPictures(t *testing.T) {
	drawing := []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<dsp:drawing xmlns:dsp="http://schemas.microsoft.com/office/drawing/2008/diagram" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<dsp:spTree><dsp:nvGrpSpPr><dsp:cNvPr id="0" name=""/><dsp:cNvGrpSpPr/></dsp:nvGrpSpPr><dsp:grpSpPr/>` +
		`<dsp:sp modelId="{1}"><dsp:nvSpPr><dsp:cNvPr id="0" name=""/><dsp:cNvSpPr/></dsp:nvSpPr><dsp:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="10" cy="10"/></a:xfrm><a:blipFill><a:blip r:embed="rId1"/></a:blipFill></dsp:spPr></dsp:sp>` +
		`</dsp:spTree></dsp:drawing>`)
	d := diagramDeck()
	d.Parts = append(diagramParts(drawing, pptxtest.Rel{ID: "rId1", Type: pptxtest.RelImage, Target: "../media/image1.png"}),
		pptxtest.Part{Name: "ppt/media/image1.png", Data: pptxtest.PNG(t, 7)})
	p := openDeck(t, d)
	s := mustSlide(t, p, 0)

	if _, err := FlattenDiagrams(s, DefaultFlattenOptions()); err != nil {
		t.Fatalf("FlattenDiagrams() error = %v", err)
	}
	blips := descendants(s.tree(), nsDrawingML, "blip")
	if len(blips) != 1 {
		t.Fatalf("found %d blips, want 1", len(blips))
	}
	part, err := s.Part().Relationships().TargetPart(embedAttr(blips[0]))
	if err != nil {
		t.Fatalf("picture reference does not resolve on the slide: %v", err)
	}
	if part.Name() != "ppt/media/image1.png" {
		t.Errorf("picture target = %s, want ppt/media/image1.png", part.Name())
	}

	saved := reopen(t, p)
	if saved.Package().Part("ppt/media/image1.png") == nil {
		t.Error("adopted picture dropped on save")
	}
}

func TestFlattenDiagrams_InsideGroup(t *testing.T) {
	d := diagramDeck()
	d.Slides[0].Shapes = pptxtest.TextBox(2, "Title 1", "Process") +
		pptxtest.Group(10, "Group 9",
			pptxtest.TextBox(11, "Caption 10", "caption"),
			pptxtest.DiagramFrame(12, "Diagram 11", "rId2", "rId3", "rId4", "rId5", 0, 0, 500000, 400000))
	p := openDeck(t, d)
	s := mustSlide(t, p, 0)

	n, err := FlattenDiagrams(s, DefaultFlattenOptions())
	if err != nil {
		t.Fatalf("FlattenDiagrams() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("FlattenDiagrams() = %d, want 1", n)
	}

	if got := shapeNames(s.Shapes()); !equalStrings(got, []string{"Title 1", "Group 9"}) {
		t.Fatalf("top-level shapes = %v", got)
	}
	kids := s.Shapes()[1].Children()
	if got := shapeNames(kids); !equalStrings(got, []string{"Caption 10", "Flattened Diagram 12"}) {
		t.Fatalf("group children = %v", got)
	}
	flat := kids[1]
	if flat.ID() != 12 {
		t.Errorf("flattened group id = %d, want 12", flat.ID())
	}
	if tr, ok := flat.Transform(); !ok || tr != (Transform{CX: 500000, CY: 400000}) {
		t.Errorf("flattened group Transform() = %+v, %v", tr, ok)
	}
	if got := len(flat.Children()); got != 2 {
		t.Errorf("flattened group has %d shapes, want 2", got)
	}
	for _, sh := range s.AllShapes() {
		if sh.IsDiagram() {
			t.Errorf("diagram frame %q survived", sh.Name())
		}
	}
	if err := s.ValidateIDs(); err != nil {
		t.Errorf("ValidateIDs() error = %v", err)
	}
}
