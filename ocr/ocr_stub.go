//go:build !ocr

// Package ocr reads text out of slide pictures so it can be indexed with the
// slide.
//
// This build has no Tesseract support: New returns ErrOCRNotEnabled.
// Rebuild with -tags ocr to enable it.
package ocr

const enabled = false

// Client is never constructed in this build.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New(opts ...Option) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close does nothing.
func (c *Client) Close() error { return nil }

// Languages returns nil.
func (c *Client) Languages() []string { return nil }

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(data []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
