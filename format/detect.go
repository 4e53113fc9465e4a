// Package format provides file format detection for presentations and the
// OLE2 compound files embedded in them.
package format

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Format represents a recognized file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PPTX indicates an Office Open XML presentation (.pptx).
	PPTX
	// PPT indicates a legacy binary PowerPoint presentation (.ppt).
	PPT
	// CompoundFile indicates any other OLE2 compound file, such as an
	// embedded Word or Excel object.
	CompoundFile
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PPTX:
		return "PPTX"
	case PPT:
		return "PPT"
	case CompoundFile:
		return "CompoundFile"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PPTX:
		return ".pptx"
	case PPT:
		return ".ppt"
	case CompoundFile:
		return ".bin"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pptx", ".pptm", ".potx", ".ppsx":
		return PPTX
	case ".ppt", ".pps", ".pot":
		return PPT
	default:
		return Unknown
	}
}

var (
	zipMagic      = []byte{0x50, 0x4B, 0x03, 0x04}
	compoundMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// IsCompoundFile reports whether data starts with the OLE2 compound file
// signature.
func IsCompoundFile(data []byte) bool {
	return bytes.HasPrefix(data, compoundMagic)
}

// DetectFromMagic checks the leading bytes. ZIP archives are reported as
// Unknown; use DetectFromReader to look inside them.
func DetectFromMagic(data []byte) Format {
	if IsCompoundFile(data) {
		if hasStream(data, "PowerPoint Document") {
			return PPT
		}
		return CompoundFile
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 8)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, zipMagic):
		return detectZIPFormat(r, size)
	case IsCompoundFile(magic):
		data := make([]byte, size)
		if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
			return Unknown, err
		}
		return DetectFromMagic(data), nil
	}
	return Unknown, nil
}

// detectZIPFormat reports PPTX for OOXML archives with a ppt/ tree.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	hasTypes := false
	hasPPT := false
	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			hasTypes = true
		case strings.HasPrefix(f.Name, "ppt/"):
			hasPPT = true
		}
	}
	if hasTypes && hasPPT {
		return PPTX, nil
	}
	return Unknown, nil
}

func hasStream(data []byte, name string) bool {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return false
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == name {
			return true
		}
	}
	return false
}

// ErrNoCompObj is returned by ProgID when the compound file carries no
// \x01CompObj stream.
var ErrNoCompObj = errors.New("no CompObj stream")

// compObjHeaderSize is the fixed header preceding the user type string.
const compObjHeaderSize = 28

// ProgID reads the program identifier of an embedded OLE object from the
// \x01CompObj stream of its compound file, e.g. "Excel.Sheet.12".
func ProgID(data []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("reading compound file: %w", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "\x01CompObj" {
			continue
		}
		stream, err := io.ReadAll(entry)
		if err != nil {
			return "", fmt.Errorf("reading CompObj stream: %w", err)
		}
		return parseCompObj(stream)
	}
	return "", ErrNoCompObj
}

// parseCompObj walks header, AnsiUserType and AnsiClipboardFormat to reach the
// length-prefixed ProgID string.
func parseCompObj(stream []byte) (string, error) {
	r := bytes.NewReader(stream)
	if _, err := r.Seek(compObjHeaderSize, io.SeekStart); err != nil {
		return "", errCompObjTruncated
	}
	if _, err := readAnsiString(r); err != nil {
		return "", err
	}

	var marker uint32
	if err := binary.Read(r, binary.LittleEndian, &marker); err != nil {
		return "", errCompObjTruncated
	}
	switch marker {
	case 0:
	case 0xFFFFFFFF, 0xFFFFFFFE:
		var clipboardFormat uint32
		if err := binary.Read(r, binary.LittleEndian, &clipboardFormat); err != nil {
			return "", errCompObjTruncated
		}
	default:
		if _, err := r.Seek(int64(marker), io.SeekCurrent); err != nil {
			return "", errCompObjTruncated
		}
	}

	progID, err := readAnsiString(r)
	if err != nil {
		return "", err
	}
	return progID, nil
}

var errCompObjTruncated = errors.New("truncated CompObj stream")

// readAnsiString reads a uint32 length followed by that many bytes, dropping
// the terminating NUL.
func readAnsiString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", errCompObjTruncated
	}
	if int64(n) > int64(r.Len()) {
		return "", errCompObjTruncated
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errCompObjTruncated
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}
