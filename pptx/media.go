package pptx

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/slidekit/opc"
)

// AddPicture embeds image data as a new media part and places a picture shape
// on top of the slide. A zero extent is filled from the image's pixel size.
// Identical media already in the package is reused.
func (s *Slide) AddPicture(data []byte, name string, t Transform) (*Shape, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("unsupported picture format: %s", mt.String())
	}
	if t.CX == 0 || t.CY == 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			t.CX = int64(cfg.Width) * emuPerPixel
			t.CY = int64(cfg.Height) * emuPerPixel
		}
	}

	part, err := s.mediaPart(data, strings.TrimPrefix(mt.Extension(), "."), mt.String())
	if err != nil {
		return nil, err
	}
	rID := s.part.Relationships().AddInternal(RelTypeImage, part)

	id := NextShapeID(s)
	if name == "" {
		name = "Picture " + strconv.Itoa(id-1)
	}
	return s.insertElement(newPicture(id, name, rID, t)), nil
}

// AddPictureFile reads an image from disk and calls AddPicture.
func (s *Slide) AddPictureFile(filename, name string, t Transform) (*Shape, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading picture: %w", err)
	}
	return s.AddPicture(data, name, t)
}

// mediaPart returns a ppt/media part holding data, adding one if needed.
func (s *Slide) mediaPart(data []byte, ext, contentType string) (*opc.Part, error) {
	pkg := s.part.Package()
	sum := sha1.Sum(data)
	for _, part := range pkg.Parts() {
		if !strings.HasPrefix(part.Name(), "ppt/media/") {
			continue
		}
		existing, err := part.Data()
		if err != nil {
			continue
		}
		if sha1.Sum(existing) == sum {
			return part, nil
		}
	}
	if ext == "" {
		ext = "bin"
	}
	types := pkg.ContentTypes()
	if !types.HasDefault(ext) {
		types.SetDefault(ext, contentType)
	}
	return pkg.AddPart(pkg.NextPartName("ppt/media/image%d."+ext), contentType, data)
}

// newPicture builds a p:pic referencing an image relationship.
func newPicture(id int, name, rID string, t Transform) *etree.Element {
	pic := newEl("p", "pic")
	nv := addEl(pic, "p", "nvPicPr")
	c := addEl(nv, "p", "cNvPr")
	c.CreateAttr("id", strconv.Itoa(id))
	c.CreateAttr("name", name)
	addEl(addEl(nv, "p", "cNvPicPr"), "a", "picLocks").CreateAttr("noChangeAspect", "1")
	addEl(nv, "p", "nvPr")

	fill := addEl(pic, "p", "blipFill")
	addEl(fill, "a", "blip").CreateAttr("r:embed", rID)
	addEl(addEl(fill, "a", "stretch"), "a", "fillRect")

	spPr := addEl(pic, "p", "spPr")
	writeXfrm(addEl(spPr, "a", "xfrm"), "a", t)
	geom := addEl(spPr, "a", "prstGeom")
	geom.CreateAttr("prst", "rect")
	addEl(geom, "a", "avLst")
	return pic
}

// stagePayload writes data to a temporary file and returns its path together
// with a cleanup func that removes it.
func stagePayload(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("staging payload: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("staging payload: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("staging payload: %w", err)
	}
	return f.Name(), cleanup, nil
}

// Pictures returns every picture on the slide, nested ones included, in
// paint order.
func (s *Slide) Pictures() []*Shape {
	var pics []*Shape
	for _, sh := range s.AllShapes() {
		if sh.kind == KindPicture {
			pics = append(pics, sh)
		}
	}
	return pics
}

// PictureData returns the image bytes a picture shape shows.
func (s *Slide) PictureData(sh *Shape) ([]byte, error) {
	id := embedAttr(blipOf(sh.el))
	if id == "" {
		return nil, fmt.Errorf("%s: picture %q has no embedded image", s.Name(), sh.Name())
	}
	part, err := s.part.Relationships().TargetPart(id)
	if err != nil {
		return nil, fmt.Errorf("%s: picture %q: %w", s.Name(), sh.Name(), err)
	}
	return part.Data()
}
