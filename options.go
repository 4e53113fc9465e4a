package slidekit

import (
	"github.com/sirupsen/logrus"
	"github.com/tsawler/slidekit/chunk"
	"github.com/tsawler/slidekit/internal/logging"
	"github.com/tsawler/slidekit/pptx"
)

// Option configures an Editor.
type Option func(*editorOptions)

// editorOptions holds configuration for an Editor.
type editorOptions struct {
	// Slide used as the basis for populated slides (0-indexed)
	templateSlide int

	// Character budget of one content shape
	maxContentChars int

	logger logrus.FieldLogger

	// Normalization
	normalize          bool
	propagateTransform bool
	photoProgIDs       []string
}

// defaultOptions returns the default editor options.
func defaultOptions() editorOptions {
	return editorOptions{
		templateSlide:      1,
		maxContentChars:    chunk.DefaultMaxSize,
		logger:             logging.Discard(),
		normalize:          true,
		propagateTransform: true,
		photoProgIDs:       nil, // nil means pptx.DefaultPhotoProgIDs
	}
}

// clone creates a deep copy of editorOptions.
func (o editorOptions) clone() editorOptions {
	c := o
	if o.photoProgIDs != nil {
		c.photoProgIDs = make([]string, len(o.photoProgIDs))
		copy(c.photoProgIDs, o.photoProgIDs)
	}
	return c
}

func (o editorOptions) flattenOptions() pptx.FlattenOptions {
	opts := pptx.DefaultFlattenOptions()
	opts.PropagateTransform = o.propagateTransform
	return opts
}

// WithTemplateSlide sets the slide Populate duplicates. Default 1, the second
// slide.
func WithTemplateSlide(index int) Option {
	return func(o *editorOptions) {
		o.templateSlide = index
	}
}

// WithMaxContentChars sets how many characters Populate places on one slide.
// Non-positive values keep the default of 2250.
func WithMaxContentChars(n int) Option {
	return func(o *editorOptions) {
		if n > 0 {
			o.maxContentChars = n
		}
	}
}

// WithLogger sets the logger for normalization and population progress.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *editorOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTransformPropagation controls whether flattened diagrams keep the
// position and size of their frame. Default true.
func WithTransformPropagation(on bool) Option {
	return func(o *editorOptions) {
		o.propagateTransform = on
	}
}

// WithPhotoProgIDs replaces the program identifier prefixes whose OLE objects
// are turned into pictures.
func WithPhotoProgIDs(prefixes ...string) Option {
	return func(o *editorOptions) {
		o.photoProgIDs = append([]string{}, prefixes...)
	}
}

// WithoutNormalization skips flattening diagrams and rewriting OLE objects
// when the document is opened.
func WithoutNormalization() Option {
	return func(o *editorOptions) {
		o.normalize = false
	}
}
