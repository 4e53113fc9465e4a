// Package pptxtest builds small PPTX packages for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

// Relationship type URIs used by fixtures.
const (
	RelImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelOLEObject      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject"
	RelDiagramData    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData"
	RelDiagramLayout  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramLayout"
	RelDiagramStyle   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramQuickStyle"
	RelDiagramColors  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramColors"
	RelDiagramDrawing = "http://schemas.microsoft.com/office/2007/relationships/diagramDrawing"
)

const (
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsMC  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	nsDsp = "http://schemas.microsoft.com/office/drawing/2008/diagram"
	nsA14 = "http://schemas.microsoft.com/office/drawing/2010/main"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
)

// NotesRelID is the slide relationship id used for fixture notes slides.
const NotesRelID = "rId90"

// Deck describes a presentation.
type Deck struct {
	Width, Height int64    // slide size in EMUs; 4:3 when zero
	Layouts       []Layout // DefaultLayouts when empty
	Slides        []Slide
	NotesMaster   bool
	Parts         []Part // extra parts such as media, embeddings, diagrams
}

// Layout is a slide layout with raw shape XML.
type Layout struct {
	Name   string
	Shapes string
}

// Slide is one slide. Shapes is the raw XML placed in p:spTree after the
// tree's own properties. Relationship rId1 always points at the layout.
type Slide struct {
	Layout int
	Shapes string
	Rels   []Rel
	Notes  string
	ExtLst bool // end the shape tree with an empty p:extLst
}

// Rel is a slide relationship. Target is relative to the slide part.
type Rel struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Part is an additional package part. Rels are written to its .rels part.
type Part struct {
	Name        string
	ContentType string
	Data        []byte
	Rels        []Rel
}

// DefaultLayouts returns a title layout, a title-only layout and a blank
// layout, in that order.
func DefaultLayouts() []Layout {
	return []Layout{
		{Name: "Title and Content", Shapes: Placeholder(2, "Title 1", "title", "") + Placeholder(3, "Content Placeholder 2", "body", "")},
		{Name: "Title Only", Shapes: Placeholder(2, "Title 1", "title", "")},
		{Name: "Blank"},
	}
}

// Bytes renders the deck as a PPTX archive.
func (d Deck) Bytes(t testing.TB) []byte {
	t.Helper()
	if d.Width == 0 {
		d.Width, d.Height = 9144000, 6858000
	}
	if len(d.Layouts) == 0 {
		d.Layouts = DefaultLayouts()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		t.Helper()
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", d.contentTypes())
	write("_rels/.rels", rels([]Rel{{ID: "rId1", Type: relBase + "officeDocument", Target: "ppt/presentation.xml"}}))
	write("ppt/presentation.xml", d.presentation())

	presRels := []Rel{{ID: "rId1", Type: relBase + "slideMaster", Target: "slideMasters/slideMaster1.xml"}}
	if d.NotesMaster {
		presRels = append(presRels, Rel{ID: "rId2", Type: relBase + "notesMaster", Target: "notesMasters/notesMaster1.xml"})
	}
	for i := range d.Slides {
		presRels = append(presRels, Rel{ID: fmt.Sprintf("rId%d", 10+i), Type: relBase + "slide", Target: fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	write("ppt/_rels/presentation.xml.rels", rels(presRels))

	var masterRels []Rel
	var layoutIDs strings.Builder
	for i, l := range d.Layouts {
		masterRels = append(masterRels, Rel{ID: fmt.Sprintf("rId%d", i+1), Type: relBase + "slideLayout", Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i+1)})
		fmt.Fprintf(&layoutIDs, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, 2147483649+i, i+1)
		write(fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1),
			fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld name="%s"><p:spTree>%s%s</p:spTree></p:cSld></p:sldLayout>`,
				nsA, nsR, nsP, l.Name, treeProps, l.Shapes))
		write(fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1),
			rels([]Rel{{ID: "rId1", Type: relBase + "slideMaster", Target: "../slideMasters/slideMaster1.xml"}}))
	}
	write("ppt/slideMasters/slideMaster1.xml", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>%s</p:spTree></p:cSld><p:sldLayoutIdLst>%s</p:sldLayoutIdLst></p:sldMaster>`,
		nsA, nsR, nsP, treeProps, layoutIDs.String()))
	write("ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(masterRels))

	if d.NotesMaster {
		write("ppt/notesMasters/notesMaster1.xml", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notesMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>%s</p:spTree></p:cSld></p:notesMaster>`,
			nsA, nsR, nsP, treeProps))
	}

	for i, s := range d.Slides {
		n := i + 1
		ext := ""
		if s.ExtLst {
			ext = "<p:extLst/>"
		}
		write(fmt.Sprintf("ppt/slides/slide%d.xml", n), fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" xmlns:mc="%s"><p:cSld><p:spTree>%s%s%s</p:spTree></p:cSld></p:sld>`,
			nsA, nsR, nsP, nsMC, treeProps, s.Shapes, ext))

		slideRels := []Rel{{ID: "rId1", Type: relBase + "slideLayout", Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", s.Layout+1)}}
		slideRels = append(slideRels, s.Rels...)
		if s.Notes != "" {
			slideRels = append(slideRels, Rel{ID: NotesRelID, Type: relBase + "notesSlide", Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)})
			write(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>%s%s</p:spTree></p:cSld></p:notes>`,
				nsA, nsR, nsP, treeProps, Placeholder(3, "Notes Placeholder 2", "body", s.Notes)))
			write(fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n),
				rels([]Rel{{ID: "rId1", Type: relBase + "slide", Target: fmt.Sprintf("../slides/slide%d.xml", n)}}))
		}
		write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), rels(slideRels))
	}

	for _, p := range d.Parts {
		w, err := zw.Create(p.Name)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", p.Name, err)
		}
		if _, err := w.Write(p.Data); err != nil {
			t.Fatalf("Failed to write %s: %v", p.Name, err)
		}
		if len(p.Rels) > 0 {
			dir, base := path.Split(p.Name)
			write(dir+"_rels/"+base+".rels", rels(p.Rels))
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// WriteFile renders the deck into a file under t.TempDir and returns its path.
func (d Deck) WriteFile(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, d.Bytes(t), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

const treeProps = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`

func (d Deck) presentation() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if d.NotesMaster {
		b.WriteString(`<p:notesMasterIdLst><p:notesMasterId r:id="rId2"/></p:notesMasterIdLst>`)
	}
	if len(d.Slides) > 0 {
		b.WriteString("<p:sldIdLst>")
		for i := range d.Slides {
			fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 10+i)
		}
		b.WriteString("</p:sldIdLst>")
	}
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`, d.Width, d.Height)
	return b.String()
}

func (d Deck) contentTypes() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="bin" ContentType="application/vnd.openxmlformats-officedocument.oleObject"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
`)
	for i := range d.Layouts {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slideLayouts/slideLayout%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`+"\n", i+1)
	}
	if d.NotesMaster {
		b.WriteString(`<Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"/>` + "\n")
	}
	for i, s := range d.Slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`+"\n", i+1)
		if s.Notes != "" {
			fmt.Fprintf(&b, `<Override PartName="/ppt/notesSlides/notesSlide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"/>`+"\n", i+1)
		}
	}
	for _, p := range d.Parts {
		if p.ContentType != "" {
			fmt.Fprintf(&b, `<Override PartName="/%s" ContentType="%s"/>`+"\n", p.Name, p.ContentType)
		}
	}
	b.WriteString("</Types>")
	return b.String()
}

func rels(items []Rel) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range items {
		mode := ""
		if r.External {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`, r.ID, r.Type, r.Target, mode)
	}
	b.WriteString("</Relationships>")
	return b.String()
}

func xfrm(x, y, cx, cy int64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, cx, cy)
}

func txBody(text string) string {
	var b strings.Builder
	b.WriteString("<p:txBody><a:bodyPr/><a:lstStyle/>")
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			b.WriteString("<a:p/>")
			continue
		}
		fmt.Fprintf(&b, "<a:p><a:r><a:t>%s</a:t></a:r></a:p>", escape(line))
	}
	b.WriteString("</p:txBody>")
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

// TextBox returns a p:sp with a text body and explicit geometry.
func TextBox(id int, name, text string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>%s</p:sp>`,
		id, escape(name), xfrm(int64(id)*100000, 100000, 3000000, 500000), txBody(text))
}

// Shape returns a p:sp without a text body.
func Shape(id int, name string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr>%s<a:prstGeom prst="ellipse"><a:avLst/></a:prstGeom></p:spPr></p:sp>`,
		id, escape(name), xfrm(100000, 100000, 200000, 200000))
}

// Placeholder returns a p:sp bound to a layout placeholder of type phType.
func Placeholder(id int, name, phType, text string) string {
	idx := ""
	if phType != "title" && phType != "ctrTitle" {
		idx = ` idx="1"`
	}
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="%s"%s/></p:nvPr></p:nvSpPr><p:spPr/>%s</p:sp>`,
		id, escape(name), phType, idx, txBody(text))
}

// Picture returns a p:pic embedding the image behind rID.
func Picture(id int, name, rID string, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr><p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		id, escape(name), rID, xfrm(x, y, cx, cy))
}

// Group returns a p:grpSp holding children.
func Group(id int, name string, children ...string) string {
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="%s"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="1000000" cy="1000000"/><a:chOff x="0" y="0"/><a:chExt cx="1000000" cy="1000000"/></a:xfrm></p:grpSpPr>%s</p:grpSp>`,
		id, escape(name), strings.Join(children, ""))
}

// Connector returns a p:cxnSp joining shapes start and end.
func Connector(id int, name string, start, end int) string {
	return fmt.Sprintf(`<p:cxnSp><p:nvCxnSpPr><p:cNvPr id="%d" name="%s"/><p:cNvCxnSpPr><a:stCxn id="%d" idx="0"/><a:endCxn id="%d" idx="0"/></p:cNvCxnSpPr><p:nvPr/></p:nvCxnSpPr><p:spPr>%s</p:spPr></p:cxnSp>`,
		id, escape(name), start, end, xfrm(0, 0, 100000, 100000))
}

func frameXfrm(x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, x, y, cx, cy)
}

// Table returns a graphic frame with a table of rows.
func Table(id int, name string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<a:tbl><a:tblGrid/>")
	for _, row := range rows {
		b.WriteString(`<a:tr h="370840">`)
		for _, cell := range row {
			fmt.Fprintf(&b, `<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></a:txBody></a:tc>`, escape(cell))
		}
		b.WriteString("</a:tr>")
	}
	b.WriteString("</a:tbl>")
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>%s<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">%s</a:graphicData></a:graphic></p:graphicFrame>`,
		id, escape(name), frameXfrm(0, 0, 4000000, 1000000), b.String())
}

// DiagramFrame returns a SmartArt graphic frame referencing data, layout,
// style and colors relationships.
func DiagramFrame(id int, name, dm, lo, qs, cs string, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>%s<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/diagram"><dgm:relIds xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" r:dm="%s" r:lo="%s" r:qs="%s" r:cs="%s"/></a:graphicData></a:graphic></p:graphicFrame>`,
		id, escape(name), frameXfrm(x, y, cx, cy), dm, lo, qs, cs)
}

// DiagramData returns a diagram data model part naming the slide
// relationship of its drawing.
func DiagramData(drawingRelID string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" xmlns:a="%s"><dgm:ptLst/><dgm:extLst><a:ext uri="http://schemas.microsoft.com/office/drawing/2008/diagram"><dsp:dataModelExt xmlns:dsp="%s" relId="%s" minVer="http://schemas.openxmlformats.org/drawingml/2006/diagram"/></a:ext></dgm:extLst></dgm:dataModel>`,
		nsA, nsDsp, drawingRelID))
}

// DiagramDrawing returns a diagram drawing part with one rectangle per text.
func DiagramDrawing(texts ...string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<dsp:drawing xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" xmlns:dsp="%s" xmlns:a="%s"><dsp:spTree><dsp:nvGrpSpPr><dsp:cNvPr id="0" name=""/><dsp:cNvGrpSpPr/></dsp:nvGrpSpPr><dsp:grpSpPr/>`, nsDsp, nsA)
	for i, text := range texts {
		fmt.Fprintf(&b, `<dsp:sp modelId="{%08d-0000-0000-0000-000000000000}"><dsp:nvSpPr><dsp:cNvPr id="0" name=""/><dsp:cNvSpPr/></dsp:nvSpPr><dsp:spPr>%s<a:prstGeom prst="roundRect"><a:avLst/></a:prstGeom></dsp:spPr><dsp:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:t>%s</a:t></a:r></a:p></dsp:txBody><dsp:txXfrm><a:off x="0" y="0"/><a:ext cx="10" cy="10"/></dsp:txXfrm></dsp:sp>`,
			i, xfrm(int64(i)*1000000, 0, 900000, 600000), escape(text))
	}
	b.WriteString("</dsp:spTree></dsp:drawing>")
	return []byte(b.String())
}

// OLEFrame returns an OLE object graphic frame in the markup-compatibility
// form PowerPoint writes: a VML choice and a fallback carrying the preview
// picture. Empty objRID or previewRID leave the reference out.
func OLEFrame(id int, name, progID, objRID, previewRID string, x, y, cx, cy int64) string {
	obj := func(extra string) string {
		ref := ""
		if objRID != "" {
			ref = fmt.Sprintf(` r:id="%s"`, objRID)
		}
		prog := ""
		if progID != "" {
			prog = fmt.Sprintf(` progId="%s"`, progID)
		}
		return fmt.Sprintf(`<p:oleObj name="%s"%s%s><p:embed/>%s</p:oleObj>`, escape(name), ref, prog, extra)
	}
	preview := ""
	if previewRID != "" {
		preview = fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="0" name=""/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
			previewRID, xfrm(x, y, cx, cy))
	}
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>%s<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/presentationml/2006/ole"><mc:AlternateContent><mc:Choice xmlns:v="urn:schemas-microsoft-com:vml" Requires="v">%s</mc:Choice><mc:Fallback>%s</mc:Fallback></mc:AlternateContent></a:graphicData></a:graphic></p:graphicFrame>`,
		id, escape(name), frameXfrm(x, y, cx, cy), obj(""), obj(preview))
}

// NativeOLEFrame returns an OLE object graphic frame with its p:oleObj
// directly under the graphic data, as other presentation tools write it.
func NativeOLEFrame(id int, name, progID, objRID string) string {
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>%s<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/presentationml/2006/ole"><p:oleObj name="%s" r:id="%s" progId="%s"><p:embed/></p:oleObj></a:graphicData></a:graphic></p:graphicFrame>`,
		id, escape(name), frameXfrm(0, 0, 1000000, 800000), escape(name), objRID, progID)
}

// Alternate wraps shape XML in mc:AlternateContent the way PowerPoint stores
// equations and other shapes older readers cannot show. The choice requires
// the a14 namespace, which it declares itself.
func Alternate(choice, fallback string) string {
	return fmt.Sprintf(`<mc:AlternateContent><mc:Choice xmlns:a14="%s" Requires="a14">%s</mc:Choice><mc:Fallback>%s</mc:Fallback></mc:AlternateContent>`,
		nsA14, choice, fallback)
}

// PNG returns a small opaque PNG image whose pixels depend on seed, so
// different seeds give different bytes.
func PNG(t testing.TB, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x * 40), B: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}
