package slidekit

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/slidekit/chunk"
	"github.com/tsawler/slidekit/format"
	"github.com/tsawler/slidekit/pptx"
	"golang.org/x/text/unicode/norm"
)

// Text roles reported by StructuralMismatchError.
const (
	RoleTitle   = "title"
	RoleContent = "content"
)

// DuplicateSlide appends a copy of the slide at index to the presentation
// and returns it.
func (e *Editor) DuplicateSlide(index int) (*pptx.Slide, error) {
	return e.DuplicateSlideInto(index, e.pres)
}

// DuplicateSlideInto appends a copy of the slide at index to dst, which may
// be another presentation.
func (e *Editor) DuplicateSlideInto(index int, dst *pptx.Presentation) (*pptx.Slide, error) {
	src, err := e.pres.Slide(index)
	if err != nil {
		return nil, err
	}
	s, err := dst.DuplicateSlide(src)
	if err != nil {
		return nil, fmt.Errorf("duplicating slide %d: %w", index, err)
	}
	e.log.WithFields(logrus.Fields{"from": index, "to": s.Index()}).Debug("duplicated slide")
	return s, nil
}

// AddText replaces the text of the slide's title shape with title and of its
// content shape with content. The slide must have exactly one of each; see
// pptx.Slide.TextTargets.
func (e *Editor) AddText(slideIndex int, content, title string) error {
	s, err := e.pres.Slide(slideIndex)
	if err != nil {
		return err
	}
	titles, contents := s.TextTargets()
	if len(titles) != 1 {
		return &StructuralMismatchError{SlideIndex: slideIndex, Role: RoleTitle, Found: len(titles)}
	}
	if len(contents) != 1 {
		return &StructuralMismatchError{SlideIndex: slideIndex, Role: RoleContent, Found: len(contents)}
	}
	contents[0].SetText(content)
	titles[0].SetText(title)
	return nil
}

// Populate splits content into pieces that fit one slide, writes each piece
// with title onto a copy of the template slide, and places the copies right
// after the template in order. Text is normalized to NFC first. It returns
// the indices of the new slides.
func (e *Editor) Populate(content, title string) ([]int, error) {
	if e.templateRemoved {
		return nil, ErrTemplateRemoved
	}
	template := e.options.templateSlide
	if _, err := e.pres.Slide(template); err != nil {
		return nil, fmt.Errorf("template slide: %w", err)
	}

	chunks, err := chunk.Split(norm.NFC.String(content), e.options.maxContentChars)
	if err != nil {
		return nil, err
	}
	title = norm.NFC.String(title)

	created := make([]int, 0, len(chunks))
	for _, c := range chunks {
		s, err := e.DuplicateSlide(template)
		if err != nil {
			return nil, err
		}
		index := s.Index()
		if err := e.AddText(index, c.Text, title); err != nil {
			return nil, err
		}
		created = append(created, index)
	}

	next := template + 1
	indices := make([]int, len(created))
	for i, old := range created {
		if err := e.pres.MoveSlide(old, next); err != nil {
			return nil, err
		}
		indices[i] = next
		next++
	}

	e.log.WithFields(logrus.Fields{
		"title":    title,
		"chunks":   len(chunks),
		"template": template,
	}).Info("populated slides")
	return indices, nil
}

// MoveSlide moves the slide at oldIndex to newIndex.
func (e *Editor) MoveSlide(oldIndex, newIndex int) error {
	return e.pres.MoveSlide(oldIndex, newIndex)
}

// RemoveSlide removes the slide at index from the presentation.
func (e *Editor) RemoveSlide(index int) error {
	return e.pres.RemoveSlide(index)
}

// RemoveAllSlides empties the presentation.
func (e *Editor) RemoveAllSlides() {
	e.pres.RemoveAllSlides()
}

// Save writes the presentation to path. With removeTemplate the template
// slide is removed first; this happens once per editor.
func (e *Editor) Save(path string, removeTemplate bool) error {
	if removeTemplate && !e.templateRemoved {
		if err := e.pres.RemoveSlide(e.options.templateSlide); err != nil {
			return fmt.Errorf("removing template slide: %w", err)
		}
		e.templateRemoved = true
		e.log.WithField("template", e.options.templateSlide).Debug("removed template slide")
	}
	if err := e.pres.Save(path); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"path": path, "slides": e.pres.SlideCount()}).Info("saved presentation")
	return nil
}

// CopyAcrossDocuments appends the slides of src at indices (all slides when
// none are given) to the presentation at destPath and saves it. A missing
// destination is created with src's masters, layouts and slide size. The
// destination is opened with src's options and normalized before the copy.
func CopyAcrossDocuments(src *Editor, destPath string, indices ...int) error {
	dst, err := openDestination(src, destPath)
	if err != nil {
		return err
	}

	if dst.SlideCount() == 0 {
		dst.SetSize(src.pres.Size())
	}
	if len(indices) == 0 {
		indices = make([]int, src.SlideCount())
		for i := range indices {
			indices[i] = i
		}
	}
	for _, i := range indices {
		if _, err := src.DuplicateSlideInto(i, dst); err != nil {
			return err
		}
	}

	if err := dst.Save(destPath); err != nil {
		return err
	}
	src.log.WithFields(logrus.Fields{"path": destPath, "copied": len(indices)}).Info("copied slides")
	return nil
}

func openDestination(src *Editor, path string) (*pptx.Presentation, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		ed, err := newEditorAt(path, src.options.clone())
		if err != nil {
			return nil, err
		}
		return ed.pres, nil
	case errors.Is(err, fs.ErrNotExist):
		return src.pres.CloneEmpty()
	default:
		return nil, err
	}
}

func newEditorAt(path string, o editorOptions) (*Editor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := newEditorFromBytes(data, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	e.path = path
	return e, nil
}

// OpenBytes is Open for a presentation already in memory. The editor has no
// path, so Save needs an explicit one.
func OpenBytes(data []byte, opts ...Option) (*Editor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newEditorFromBytes(data, o)
}

func newEditorFromBytes(data []byte, o editorOptions) (*Editor, error) {
	f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if f != format.PPTX {
		return nil, &UnsupportedFormatError{Format: f}
	}
	pres, err := pptx.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return newEditor(pres, o)
}
