// Package pptx provides an editable model of PPTX (Office Open XML Presentation)
// documents on top of the opc container: slides, shapes, layouts, notes and the
// transformations used to duplicate slides and normalize foreign content.
package pptx

// XML namespaces used in PPTX files.
const (
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsDiagramDrawing = "http://schemas.microsoft.com/office/drawing/2008/diagram"
	nsMarkupCompat   = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// Relationship types.
const (
	RelTypeOfficeDocument = nsRelationships + "/officeDocument"
	RelTypeSlide          = nsRelationships + "/slide"
	RelTypeSlideLayout    = nsRelationships + "/slideLayout"
	RelTypeSlideMaster    = nsRelationships + "/slideMaster"
	RelTypeNotesSlide     = nsRelationships + "/notesSlide"
	RelTypeNotesMaster    = nsRelationships + "/notesMaster"
	RelTypeImage          = nsRelationships + "/image"
	RelTypeHyperlink      = nsRelationships + "/hyperlink"
	RelTypeOLEObject      = nsRelationships + "/oleObject"
	RelTypePackage        = nsRelationships + "/package"
	RelTypeDiagramData    = nsRelationships + "/diagramData"
	RelTypeDiagramLayout  = nsRelationships + "/diagramLayout"
	RelTypeDiagramStyle   = nsRelationships + "/diagramQuickStyle"
	RelTypeDiagramColors  = nsRelationships + "/diagramColors"
	RelTypeDiagramDrawing = "http://schemas.microsoft.com/office/2007/relationships/diagramDrawing"
)

// Content types of parts created by this package.
const (
	ContentTypeSlide      = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypeNotesSlide = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ContentTypeOLEObject  = "application/vnd.openxmlformats-officedocument.oleObject"
)

// graphicData uri values.
const (
	uriDiagram = "http://schemas.openxmlformats.org/drawingml/2006/diagram"
	uriOLE     = "http://schemas.openxmlformats.org/presentationml/2006/ole"
	uriTable   = "http://schemas.openxmlformats.org/drawingml/2006/table"
	uriChart   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

// emuPerPixel converts 96 DPI pixels to English Metric Units.
const emuPerPixel = 9525

// Transform is a shape's position and size in EMUs.
type Transform struct {
	X, Y   int64 // offset
	CX, CY int64 // extent
}

// IsZero reports whether the transform carries no geometry.
func (t Transform) IsZero() bool {
	return t.X == 0 && t.Y == 0 && t.CX == 0 && t.CY == 0
}
