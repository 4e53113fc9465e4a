//go:build ocr

// Package ocr reads text out of slide pictures, such as scanned handouts or
// screenshots pasted onto slides, so it can be indexed with the slide.
//
// It wraps Tesseract through gosseract, so Tesseract and its language data
// must be installed (brew install tesseract, apt-get install tesseract-ocr).
package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

const enabled = true

// Client recognizes text in pictures. A Client is not safe for concurrent
// use.
type Client struct {
	tess     *gosseract.Client
	settings settings
}

// New starts a Tesseract client. Close it when done.
func New(opts ...Option) (*Client, error) {
	s := newSettings(opts)
	tess := gosseract.NewClient()
	if err := tess.SetLanguage(s.languages...); err != nil {
		tess.Close()
		return nil, fmt.Errorf("ocr: languages %v: %w", s.languages, err)
	}
	if err := tess.SetPageSegMode(gosseract.PageSegMode(s.mode)); err != nil {
		tess.Close()
		return nil, fmt.Errorf("ocr: mode %s: %w", s.mode, err)
	}
	return &Client{tess: tess, settings: s}, nil
}

// Close releases the Tesseract handle. It is safe on a nil Client.
func (c *Client) Close() error {
	if c == nil || c.tess == nil {
		return nil
	}
	return c.tess.Close()
}

// Languages returns the configured language packs.
func (c *Client) Languages() []string {
	return append([]string(nil), c.settings.languages...)
}

// RecognizeImage returns the cleaned text of a PNG, JPEG, GIF, BMP, TIFF or
// WebP picture. Pictures smaller than MinPictureSide, and formats that cannot
// be sized, yield no text and no error.
func (c *Client) RecognizeImage(data []byte) (string, error) {
	if !worthReading(data) {
		return "", nil
	}
	if err := c.tess.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("ocr: loading picture: %w", err)
	}
	text, err := c.tess.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return cleanText(text), nil
}
