package slidekit

import (
	"errors"
	"fmt"

	"github.com/tsawler/slidekit/format"
)

// ErrStructuralMismatch matches every *StructuralMismatchError with errors.Is.
var ErrStructuralMismatch = errors.New("slide structure mismatch")

// ErrTemplateRemoved is returned by operations that need the template slide
// after Save removed it.
var ErrTemplateRemoved = errors.New("template slide already removed")

// StructuralMismatchError reports a slide that does not have exactly one
// shape for a text role.
type StructuralMismatchError struct {
	SlideIndex int
	Role       string // "title" or "content"
	Found      int
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("slide %d: want exactly one %s shape, found %d", e.SlideIndex, e.Role, e.Found)
}

// Is reports whether target is ErrStructuralMismatch.
func (e *StructuralMismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}

// ErrUnsupportedFormat matches every *UnsupportedFormatError with errors.Is.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// UnsupportedFormatError reports input that is not an Office Open XML
// presentation, such as a legacy binary .ppt file.
type UnsupportedFormatError struct {
	Format format.Format
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == format.PPT {
		return "legacy binary presentation; convert it to .pptx first"
	}
	return fmt.Sprintf("not a .pptx presentation (detected %s)", e.Format)
}

// Is reports whether target is ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
