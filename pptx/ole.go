package pptx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/tsawler/slidekit/format"
	"github.com/tsawler/slidekit/opc"
)

// DefaultPhotoProgIDs are the program identifier prefixes of legacy photo
// editors whose objects are replaced by their preview picture.
var DefaultPhotoProgIDs = []string{"MSPhotoEd", "PhotoDraw"}

// UnresolvedReferenceError reports an OLE object whose payload cannot be
// located through either its object or its preview relationship.
type UnresolvedReferenceError struct {
	Slide  string // slide part name
	Shape  string // shape name
	Reason string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: OLE object %q: %s", e.Slide, e.Shape, e.Reason)
}

// oleObjects returns every p:oleObj under the frame's graphic data, inside
// markup-compatibility branches included.
func (s *Shape) oleObjects() []*etree.Element {
	gd := s.graphicData()
	if gd == nil {
		return nil
	}
	return descendants(gd, nsPresentationML, "oleObj")
}

// ProgID returns the program identifier of an OLE object frame.
func (s *Shape) ProgID() string {
	for _, obj := range s.oleObjects() {
		if id := obj.SelectAttrValue("progId", ""); id != "" {
			return id
		}
	}
	return ""
}

// isNativeOLE reports whether the frame already holds its oleObj directly
// under graphicData, the form NormalizeOLEObjects writes.
func (s *Shape) isNativeOLE() bool {
	return child(s.graphicData(), nsPresentationML, "oleObj") != nil
}

// previewPicture returns the cached preview p:pic of an OLE frame.
func (s *Shape) previewPicture() *etree.Element {
	for _, obj := range s.oleObjects() {
		if pic := child(obj, nsPresentationML, "pic"); pic != nil {
			return pic
		}
	}
	return nil
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// NormalizePhotoObjects replaces OLE objects of legacy photo editors by the
// preview picture they carry. progIDs lists program identifier prefixes; nil
// means DefaultPhotoProgIDs. Objects without a preview are left for
// NormalizeOLEObjects. The object's own relationship is dropped once nothing
// references it. It returns the number of objects replaced.
func NormalizePhotoObjects(s *Slide, progIDs []string) int {
	if progIDs == nil {
		progIDs = DefaultPhotoProgIDs
	}
	replaced := 0
	for _, frame := range s.Shapes() {
		if frame.kind != KindOLEObject || !hasPrefixAny(frame.ProgID(), progIDs) {
			continue
		}
		preview := frame.previewPicture()
		if preview == nil {
			continue
		}
		t, _ := frame.Transform()
		var oldIDs []string
		for _, attr := range relAttrs(frame.el) {
			oldIDs = append(oldIDs, attr.Value)
		}

		pic := newShape(preview.Copy())
		id := NextShapeID(s)
		pic.SetID(id)
		pic.SetName("Picture " + strconv.Itoa(id-1))
		pic.SetTransform(t)
		s.insertElement(pic.el)
		s.RemoveShape(frame)
		s.removeRels(oldIDs...)
		replaced++
	}
	return replaced
}

// NormalizeOLEObjects rewrites every OLE object frame that still wraps its
// object in markup-compatibility branches into the native form: a graphic
// frame holding one p:oleObj whose payload lives in a new embedding part.
// The payload is found through the object relationship or, failing that, the
// preview picture. A missing program identifier is recovered from the
// payload's CompObj stream. The replacement is inserted at the original paint
// position before the original is removed, so a failure leaves the slide
// unchanged for that object. Frames already in native form are left as they
// are, but their payload must still resolve.
func NormalizeOLEObjects(s *Slide) (int, error) {
	replaced := 0
	for _, frame := range s.Shapes() {
		if frame.kind != KindOLEObject {
			continue
		}
		if frame.isNativeOLE() {
			if err := s.checkNativeOLE(frame); err != nil {
				return replaced, err
			}
			continue
		}
		if err := normalizeOLEObject(s, frame); err != nil {
			return replaced, err
		}
		replaced++
	}
	return replaced, nil
}

func normalizeOLEObject(s *Slide, frame *Shape) error {
	rels := s.part.Relationships()
	var oldIDs []string
	for _, attr := range relAttrs(frame.el) {
		oldIDs = append(oldIDs, attr.Value)
	}

	payload, err := s.olePayload(frame)
	if err != nil {
		return err
	}
	data, err := payload.Data()
	if err != nil {
		return &UnresolvedReferenceError{Slide: s.Name(), Shape: frame.Name(), Reason: err.Error()}
	}

	progID := frame.ProgID()
	if progID == "" && format.IsCompoundFile(data) {
		if id, err := format.ProgID(data); err == nil {
			progID = id
		}
	}

	part, relType, err := addEmbedding(s.part.Package(), data)
	if err != nil {
		return err
	}
	rID := rels.AddInternal(relType, part)

	t, _ := frame.Transform()
	var preview *etree.Element
	if pic := frame.previewPicture(); pic != nil {
		preview = pic.Copy()
	}
	name := frame.Name()
	for _, obj := range frame.oleObjects() {
		if n := obj.SelectAttrValue("name", ""); n != "" {
			name = n
			break
		}
	}

	native := newOLEFrame(frame, t, progID, name, rID, preview)
	s.insertAt(frame, native)
	s.RemoveShape(frame)
	s.removeRels(oldIDs...)
	return nil
}

// checkNativeOLE verifies that a frame already in native form still reaches
// its payload, or links to an external file.
func (s *Slide) checkNativeOLE(frame *Shape) error {
	rels := s.part.Relationships()
	for _, obj := range frame.oleObjects() {
		if rel, ok := rels.Get(relIDAttr(obj)); ok && rel.External {
			return nil
		}
	}
	_, err := s.olePayload(frame)
	return err
}

// olePayload resolves the part holding an OLE object's bytes.
func (s *Slide) olePayload(frame *Shape) (*opc.Part, error) {
	rels := s.part.Relationships()
	var reasons []string
	for _, obj := range frame.oleObjects() {
		id := relIDAttr(obj)
		if id == "" {
			continue
		}
		part, err := rels.TargetPart(id)
		if err == nil {
			return part, nil
		}
		reasons = append(reasons, err.Error())
	}
	if pic := frame.previewPicture(); pic != nil {
		if id := embedAttr(blipOf(pic)); id != "" {
			part, err := rels.TargetPart(id)
			if err == nil {
				return part, nil
			}
			reasons = append(reasons, err.Error())
		}
	}
	reason := "no object or preview reference"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	return nil, &UnresolvedReferenceError{Slide: s.Name(), Shape: frame.Name(), Reason: reason}
}

// addEmbedding stores an OLE payload. Compound files become oleObjectN.bin
// parts; anything else is embedded as a package with a detected type.
func addEmbedding(pkg *opc.Package, data []byte) (*opc.Part, string, error) {
	if format.IsCompoundFile(data) {
		types := pkg.ContentTypes()
		if !types.HasDefault("bin") {
			types.SetDefault("bin", ContentTypeOLEObject)
		}
		part, err := pkg.AddPart(pkg.NextPartName("ppt/embeddings/oleObject%d.bin"), ContentTypeOLEObject, data)
		return part, RelTypeOLEObject, err
	}
	mt := mimetype.Detect(data)
	ext := strings.TrimPrefix(mt.Extension(), ".")
	if ext == "" {
		ext = "bin"
	}
	part, err := pkg.AddPart(pkg.NextPartName("ppt/embeddings/package%d."+ext), mt.String(), data)
	return part, RelTypePackage, err
}

// newOLEFrame builds the native graphic frame for an OLE object, keeping the
// original frame's non-visual properties.
func newOLEFrame(orig *Shape, t Transform, progID, name, rID string, preview *etree.Element) *etree.Element {
	f := newEl("p", "graphicFrame")
	nv := addEl(f, "p", "nvGraphicFramePr")
	c := addEl(nv, "p", "cNvPr")
	c.CreateAttr("id", strconv.Itoa(orig.ID()))
	c.CreateAttr("name", orig.Name())
	addEl(addEl(nv, "p", "cNvGraphicFramePr"), "a", "graphicFrameLocks").CreateAttr("noChangeAspect", "1")
	addEl(nv, "p", "nvPr")
	writeXfrm(addEl(f, "p", "xfrm"), "a", t)

	gd := addEl(addEl(f, "a", "graphic"), "a", "graphicData")
	gd.CreateAttr("uri", uriOLE)
	obj := addEl(gd, "p", "oleObj")
	if name != "" {
		obj.CreateAttr("name", name)
	}
	obj.CreateAttr("r:id", rID)
	if progID != "" {
		obj.CreateAttr("progId", progID)
	}
	addEl(obj, "p", "embed")
	if preview != nil {
		obj.AddChild(preview)
	}
	return f
}
