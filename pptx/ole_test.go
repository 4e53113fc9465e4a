package pptx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tsawler/slidekit/internal/pptxtest"
)

// oleDeck has a title, one OLE frame and a trailing text box. The object
// relationship is rId2 and the preview picture rId3.
func oleDeck(t *testing.T, progID, objRID, previewRID string, payload []byte) pptxtest.Deck {
	t.Helper()
	return pptxtest.Deck{
		Slides: []pptxtest.Slide{{
			Shapes: pptxtest.TextBox(2, "Title 1", "Objects") +
				pptxtest.OLEFrame(3, "Object 2", progID, objRID, previewRID, 100, 200, 300, 400) +
				pptxtest.TextBox(4, "TextBox 3", "after"),
			Rels: []pptxtest.Rel{
				{ID: "rId2", Type: pptxtest.RelOLEObject, Target: "../embeddings/oleObject1.bin"},
				{ID: "rId3", Type: pptxtest.RelImage, Target: "../media/image1.png"},
			},
		}},
		Parts: []pptxtest.Part{
			{Name: "ppt/embeddings/oleObject1.bin", Data: payload},
			{Name: "ppt/media/image1.png", Data: pptxtest.PNG(t, 2)},
		},
	}
}

var compoundJunk = append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0x42}, 64)...)

func TestNormalizePhotoObjects(t *testing.T) {
	p := openDeck(t, oleDeck(t, "MSPhotoEd.3", "rId2", "rId3", compoundJunk))
	s := mustSlide(t, p, 0)

	if n := NormalizePhotoObjects(s, nil); n != 1 {
		t.Fatalf("NormalizePhotoObjects() = %d, want 1", n)
	}

	shapes := s.Shapes()
	if got := shapeNames(shapes); !equalStrings(got, []string{"Title 1", "TextBox 3", "Picture 4"}) {
		t.Fatalf("shapes = %v", got)
	}
	pic := shapes[2]
	if pic.Kind() != KindPicture || pic.ID() != 5 {
		t.Errorf("replacement = %v id %d, want picture id 5", pic.Kind(), pic.ID())
	}
	tr, ok := pic.Transform()
	if want := (Transform{X: 100, Y: 200, CX: 300, CY: 400}); !ok || tr != want {
		t.Errorf("Transform() = %+v, want %+v", tr, want)
	}
	if !bytes.Equal(pictureBytes(t, s, pic), pptxtest.PNG(t, 2)) {
		t.Error("replacement does not show the preview image")
	}
	if _, ok := s.Part().Relationships().Get("rId2"); ok {
		t.Error("object relationship kept after replacement")
	}

	if n := NormalizePhotoObjects(s, nil); n != 0 {
		t.Errorf("second NormalizePhotoObjects() = %d, want 0", n)
	}

	saved := reopen(t, p)
	if saved.Package().Part("ppt/embeddings/oleObject1.bin") != nil {
		t.Error("photo object payload survived save")
	}
}

func TestNormalizePhotoObjects_Filters(t *testing.T) {
	tests := []struct {
		name    string
		progID  string
		preview string
		prefix  []string
		want    int
	}{
		{"photo draw", "PhotoDraw.Image.1", "rId3", nil, 1},
		{"other program", "Excel.Sheet.12", "rId3", nil, 0},
		{"no preview", "MSPhotoEd.3", "", nil, 0},
		{"custom prefixes", "Excel.Sheet.12", "rId3", []string{"Excel."}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openDeck(t, oleDeck(t, tt.progID, "rId2", tt.preview, compoundJunk))
			if n := NormalizePhotoObjects(mustSlide(t, p, 0), tt.prefix); n != tt.want {
				t.Errorf("NormalizePhotoObjects() = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestNormalizeOLEObjects_Package(t *testing.T) {
	payload := []byte("plain text payload\nsecond line\n")
	p := openDeck(t, oleDeck(t, "Package", "rId2", "rId3", payload))
	s := mustSlide(t, p, 0)

	n, err := NormalizeOLEObjects(s)
	if err != nil {
		t.Fatalf("NormalizeOLEObjects() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("NormalizeOLEObjects() = %d, want 1", n)
	}

	shapes := s.Shapes()
	if got := shapeNames(shapes); !equalStrings(got, []string{"Title 1", "Object 2", "TextBox 3"}) {
		t.Fatalf("shapes = %v", got)
	}
	frame := shapes[1]
	if frame.Kind() != KindOLEObject || !frame.isNativeOLE() {
		t.Fatal("replacement is not a native OLE frame")
	}
	if frame.ID() != 3 {
		t.Errorf("ID() = %d, want 3", frame.ID())
	}
	if got := frame.ProgID(); got != "Package" {
		t.Errorf("ProgID() = %q, want Package", got)
	}
	if tr, _ := frame.Transform(); tr != (Transform{X: 100, Y: 200, CX: 300, CY: 400}) {
		t.Errorf("Transform() = %+v", tr)
	}
	if frame.previewPicture() == nil {
		t.Error("preview picture not carried over")
	}

	obj := frame.oleObjects()[0]
	rels := s.Part().Relationships()
	rel, ok := rels.Get(relIDAttr(obj))
	if !ok || rel.Type != RelTypePackage {
		t.Fatalf("object relationship = %+v, %v; want package", rel, ok)
	}
	part, err := rels.TargetPart(rel.ID)
	if err != nil {
		t.Fatalf("TargetPart() error = %v", err)
	}
	if part.Name() != "ppt/embeddings/package1.txt" {
		t.Errorf("embedding = %s, want ppt/embeddings/package1.txt", part.Name())
	}
	if data, _ := part.Data(); !bytes.Equal(data, payload) {
		t.Error("embedded payload differs")
	}
	if _, ok := rels.Get("rId2"); ok {
		t.Error("old object relationship kept")
	}
	if _, ok := rels.Get("rId3"); !ok {
		t.Error("preview relationship dropped while still referenced")
	}

	if n, err := NormalizeOLEObjects(s); err != nil || n != 0 {
		t.Errorf("second NormalizeOLEObjects() = %d, %v; want 0, nil", n, err)
	}

	saved := reopen(t, p)
	ss := mustSlide(t, saved, 0)
	if got := ss.Shapes()[1].ProgID(); got != "Package" {
		t.Errorf("ProgID() after save = %q", got)
	}
	if saved.Package().Part("ppt/embeddings/oleObject1.bin") != nil {
		t.Error("old payload survived save")
	}
}

func TestNormalizeOLEObjects_CompoundWithoutProgID(t *testing.T) {
	p := openDeck(t, oleDeck(t, "", "rId2", "rId3", compoundJunk))
	s := mustSlide(t, p, 0)

	if _, err := NormalizeOLEObjects(s); err != nil {
		t.Fatalf("NormalizeOLEObjects() error = %v", err)
	}
	frame := s.Shapes()[1]
	if got := frame.ProgID(); got != "" {
		t.Errorf("ProgID() = %q, want empty for unreadable CompObj", got)
	}
	rels := s.Part().Relationships()
	rel, ok := rels.Get(relIDAttr(frame.oleObjects()[0]))
	if !ok || rel.Type != RelTypeOLEObject {
		t.Fatalf("object relationship = %+v, %v; want oleObject", rel, ok)
	}
	if got := rels.TargetName(rel); got != "ppt/embeddings/oleObject2.bin" {
		t.Errorf("embedding = %s, want ppt/embeddings/oleObject2.bin", got)
	}
}

func TestNormalizeOLEObjects_PreviewFallback(t *testing.T) {
	p := openDeck(t, oleDeck(t, "Acme.Doc", "", "rId3", nil))
	s := mustSlide(t, p, 0)

	if _, err := NormalizeOLEObjects(s); err != nil {
		t.Fatalf("NormalizeOLEObjects() error = %v", err)
	}
	rels := s.Part().Relationships()
	rel, ok := rels.Get(relIDAttr(s.Shapes()[1].oleObjects()[0]))
	if !ok {
		t.Fatal("object relationship missing")
	}
	if got := rels.TargetName(rel); got != "ppt/embeddings/package1.png" {
		t.Errorf("embedding = %s, want ppt/embeddings/package1.png", got)
	}
}

func TestNormalizeOLEObjects_Unresolved(t *testing.T) {
	p := openDeck(t, oleDeck(t, "Acme.Doc", "rId9", "", nil))
	s := mustSlide(t, p, 0)
	before := s.Shapes()[1].Element()

	_, err := NormalizeOLEObjects(s)
	var unresolved *UnresolvedReferenceError
	if !errors.As(err, &unresolved) {
		t.Fatalf("NormalizeOLEObjects() error = %v, want UnresolvedReferenceError", err)
	}
	if unresolved.Shape != "Object 2" {
		t.Errorf("Shape = %q, want %q", unresolved.Shape, "Object 2")
	}
	if got := s.Shapes()[1].Element(); got != before {
		t.Error("original frame replaced despite the error")
	}
	if len(s.Shapes()) != 3 {
		t.Errorf("len(Shapes()) = %d, want 3", len(s.Shapes()))
	}
}

func nativeOLESlide(t *testing.T, rels []pptxtest.Rel) *Slide {
	t.Helper()
	p := openDeck(t, pptxtest.Deck{
		Slides: []pptxtest.Slide{{
			Shapes: pptxtest.TextBox(2, "Title 1", "Objects") +
				pptxtest.NativeOLEFrame(3, "Object 2", "Excel.Sheet.12", "rId7"),
			Rels: rels,
		}},
		Parts: []pptxtest.Part{{Name: "ppt/embeddings/oleObject1.bin", Data: compoundJunk}},
	})
	return mustSlide(t, p, 0)
}

func TestNormalizeOLEObjects_NativeFrame(t *testing.T) {
	tests := []struct {
		name       string
		rels       []pptxtest.Rel
		unresolved bool
	}{
		{
			name: "embedded payload",
			rels: []pptxtest.Rel{{ID: "rId7", Type: pptxtest.RelOLEObject, Target: "../embeddings/oleObject1.bin"}},
		},
		{
			name: "linked file",
			rels: []pptxtest.Rel{{ID: "rId7", Type: pptxtest.RelOLEObject, Target: "file:///C:/book.xlsx", External: true}},
		},
		{
			name:       "dangling reference",
			unresolved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := nativeOLESlide(t, tt.rels)
			before := s.Shapes()[1].Element()

			n, err := NormalizeOLEObjects(s)
			if n != 0 {
				t.Errorf("NormalizeOLEObjects() replaced %d frames, want 0", n)
			}
			var unresolved *UnresolvedReferenceError
			if got := errors.As(err, &unresolved); got != tt.unresolved {
				t.Fatalf("NormalizeOLEObjects() error = %v, want unresolved = %v", err, tt.unresolved)
			}
			if tt.unresolved && unresolved.Shape != "Object 2" {
				t.Errorf("Shape = %q, want %q", unresolved.Shape, "Object 2")
			}
			if s.Shapes()[1].Element() != before {
				t.Error("native frame was rewritten")
			}
		})
	}
}
