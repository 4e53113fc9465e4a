package ocr

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MinPictureSide is the smallest width or height, in pixels, of a picture
// worth recognizing. Bullets, logos and icons fall below it.
const MinPictureSide = 32

// worthReading reports whether data decodes as an image large enough to hold
// readable text. Formats the image package cannot size, such as EMF, are
// skipped.
func worthReading(data []byte) bool {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false
	}
	return cfg.Width >= MinPictureSide && cfg.Height >= MinPictureSide
}
