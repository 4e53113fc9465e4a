// Package slidekit edits PowerPoint presentations: it duplicates slides,
// spreads long text over as many copies of a template slide as needed, and
// rewrites SmartArt diagrams and OLE objects into plain shapes that survive
// copying between documents.
//
// Basic usage:
//
//	ed, err := slidekit.Open("deck.pptx")
//	if err != nil {
//	    // handle error
//	}
//	if _, err := ed.Populate(report, "Findings"); err != nil {
//	    // handle error
//	}
//	err = ed.Save("out.pptx", true)
//
// With options:
//
//	ed, err := slidekit.Open("deck.pptx",
//	    slidekit.WithTemplateSlide(2),
//	    slidekit.WithMaxContentChars(1800),
//	    slidekit.WithLogger(log))
//
// For lower-level work on slides and shapes, see the pptx package.
package slidekit

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/slidekit/pptx"
)

// Editor is an opened presentation that has been normalized and is ready
// for editing. An Editor is not safe for concurrent use.
type Editor struct {
	pres     *pptx.Presentation
	path     string
	options  editorOptions
	log      logrus.FieldLogger
	warnings []Warning

	templateRemoved bool
}

// Warning is a non-fatal problem met while normalizing, such as a diagram
// whose drawing part is missing.
type Warning struct {
	Slide int    // 0-indexed
	Shape string // shape name
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("slide %d: %s: %v", w.Slide, w.Shape, w.Err)
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Open reads the presentation at path and normalizes every slide.
//
// Example:
//
//	ed, err := slidekit.Open("deck.pptx", slidekit.WithTemplateSlide(0))
func Open(path string, opts ...Option) (*Editor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newEditorAt(path, o)
}

// FromPresentation wraps an already opened presentation and normalizes it
// unless WithoutNormalization is given.
func FromPresentation(pres *pptx.Presentation, opts ...Option) (*Editor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newEditor(pres, o)
}

func newEditor(pres *pptx.Presentation, o editorOptions) (*Editor, error) {
	e := &Editor{pres: pres, options: o, log: o.logger}
	if o.normalize {
		if _, err := e.Normalize(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	ed := slidekit.Must(slidekit.Open("deck.pptx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Presentation returns the underlying document.
func (e *Editor) Presentation() *pptx.Presentation {
	return e.pres
}

// Path returns the file the editor was opened from, if any.
func (e *Editor) Path() string {
	return e.path
}

// TemplateSlide returns the index of the template slide.
func (e *Editor) TemplateSlide() int {
	return e.options.templateSlide
}

// SlideCount returns the number of slides in the slide list.
func (e *Editor) SlideCount() int {
	return e.pres.SlideCount()
}

// Warnings returns the non-fatal problems collected so far.
func (e *Editor) Warnings() []Warning {
	return e.warnings
}

// NormalizeResult counts the replacements made by Normalize.
type NormalizeResult struct {
	Diagrams int // SmartArt frames flattened into groups
	Photos   int // photo editor objects replaced by pictures
	Objects  int // OLE objects rewritten into the native form
}

// Add accumulates r into n.
func (n *NormalizeResult) Add(r NormalizeResult) {
	n.Diagrams += r.Diagrams
	n.Photos += r.Photos
	n.Objects += r.Objects
}

// Normalize flattens diagrams and rewrites OLE objects on every slide. It is
// run by Open and is idempotent. Diagrams without a drawing are removed and
// reported as warnings; an OLE object whose payload cannot be found fails the
// call.
func (e *Editor) Normalize() (NormalizeResult, error) {
	var total NormalizeResult
	slides, err := e.pres.Slides()
	if err != nil {
		return total, err
	}
	for i, s := range slides {
		r, err := e.normalizeSlide(i, s)
		if err != nil {
			return total, err
		}
		total.Add(r)
	}
	e.log.WithFields(logrus.Fields{
		"diagrams": total.Diagrams,
		"photos":   total.Photos,
		"objects":  total.Objects,
	}).Info("normalized presentation")
	return total, nil
}

func (e *Editor) normalizeSlide(index int, s *pptx.Slide) (NormalizeResult, error) {
	var r NormalizeResult
	log := e.log.WithFields(logrus.Fields{"slide": index, "part": s.Name()})

	fo := e.options.flattenOptions()
	fo.OnMissingDrawing = func(frame *pptx.Shape, err error) {
		log.WithField("shape", frame.Name()).WithError(err).Warn("removed diagram without drawing")
		e.warnings = append(e.warnings, Warning{Slide: index, Shape: frame.Name(), Err: err})
	}
	n, err := pptx.FlattenDiagrams(s, fo)
	if err != nil {
		return r, fmt.Errorf("slide %d: flattening diagrams: %w", index, err)
	}
	r.Diagrams = n

	r.Photos = pptx.NormalizePhotoObjects(s, e.options.photoProgIDs)

	if r.Objects, err = pptx.NormalizeOLEObjects(s); err != nil {
		return r, fmt.Errorf("slide %d: %w", index, err)
	}
	if r == (NormalizeResult{}) {
		return r, nil
	}
	if err := s.ValidateIDs(); err != nil {
		return r, fmt.Errorf("slide %d: %w", index, err)
	}
	log.WithFields(logrus.Fields{
		"diagrams": r.Diagrams,
		"photos":   r.Photos,
		"objects":  r.Objects,
	}).Debug("normalized slide")
	return r, nil
}
