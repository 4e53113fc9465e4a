package pptx

import "strings"

// Shape roles are inferred from display names, the way PowerPoint names
// placeholders ("Title 1", "Content Placeholder 2", "Diagram 3"). The rules
// are kept in this one file so callers never match names themselves.
const (
	titleMarker       = "Title"
	placeholderMarker = "Placeholder"
	diagramMarker     = "Diagram"
)

// IsTitleName reports whether a shape name marks the slide title.
func IsTitleName(name string) bool {
	return strings.Contains(name, titleMarker)
}

// isPlaceholderName reports whether a name is excluded from identifier scans.
func isPlaceholderName(name string) bool {
	return strings.Contains(name, placeholderMarker)
}

// isDiagramName reports whether a graphic frame name marks a SmartArt diagram.
func isDiagramName(name string) bool {
	return strings.Contains(name, diagramMarker)
}

// IsTitle reports whether the shape is the slide title: a text shape whose
// name carries the title marker.
func (s *Shape) IsTitle() bool {
	return s.HasTextFrame() && IsTitleName(s.Name())
}

// IsDiagram reports whether the shape is a SmartArt diagram frame, either by
// its graphic data or by name.
func (s *Shape) IsDiagram() bool {
	if s.kind != KindGraphicFrame {
		return false
	}
	return s.graphicDataURI() == uriDiagram || isDiagramName(s.Name())
}

// TextTargets splits the slide's top-level text shapes by role: titles are
// shapes whose name carries the title marker, contents are every other text
// shape except footer, date and slide number placeholders.
func (s *Slide) TextTargets() (titles, contents []*Shape) {
	for _, sh := range s.Shapes() {
		if !sh.HasTextFrame() || isFooterPlaceholder(sh.PlaceholderType()) {
			continue
		}
		if sh.IsTitle() {
			titles = append(titles, sh)
		} else {
			contents = append(contents, sh)
		}
	}
	return titles, contents
}
