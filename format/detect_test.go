package format

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/tsawler/slidekit/internal/pptxtest"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PPTX, "PPTX"},
		{PPT, "PPT"},
		{CompoundFile, "CompoundFile"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PPTX, ".pptx"},
		{PPT, ".ppt"},
		{CompoundFile, ".bin"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"deck.pptx", PPTX},
		{"deck.PPTX", PPTX},
		{"deck.Pptx", PPTX},
		{"deck.pptm", PPTX},
		{"deck.potx", PPTX},
		{"deck.ppsx", PPTX},
		{"deck.ppt", PPT},
		{"deck.PPT", PPT},
		{"deck.pps", PPT},
		{"deck.docx", Unknown},
		{"deck.txt", Unknown},
		{"deck", Unknown},
		{"", Unknown},
		{"/path/to/file.pptx", PPTX},
		{"/path/to/file.ppt", PPT},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestIsCompoundFile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"signature", append(append([]byte(nil), compoundMagic...), 0x00, 0x01), true},
		{"signature only", compoundMagic, true},
		{"zip", []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00}, false},
		{"short", compoundMagic[:4], false},
		{"empty", nil, false},
		{"text", []byte("Hello, World!"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompoundFile(tt.data); got != tt.want {
				t.Errorf("IsCompoundFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "ZIP magic bytes",
			data: []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00},
			want: Unknown, // ZIP needs further inspection
		},
		{
			name: "unreadable compound file",
			data: append(append([]byte(nil), compoundMagic...), bytes.Repeat([]byte{0x42}, 32)...),
			want: CompoundFile,
		},
		{
			name: "empty data",
			data: []byte{},
			want: Unknown,
		},
		{
			name: "text file",
			data: []byte("Hello, World!"),
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromReader_PPTX(t *testing.T) {
	data := pptxtest.Deck{Slides: []pptxtest.Slide{{Shapes: pptxtest.TextBox(2, "TextBox 1", "x")}}}.Bytes(t)

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != PPTX {
		t.Errorf("DetectFromReader() = %v, want PPTX", format)
	}
}

func TestDetectFromReader_OtherZIP(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	w.Write([]byte("<Types/>"))
	if w, err = zw.Create("word/document.xml"); err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	w.Write([]byte("<document/>"))
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	format, err := DetectFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", format)
	}
}

func TestDetectFromReader_Unknown(t *testing.T) {
	data := []byte("Hello, World! This is plain text.")

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", format)
	}
}

// compObj builds a CompObj stream with the given clipboard format block.
func compObj(userType string, clipboard []byte, progID string) []byte {
	var b bytes.Buffer
	b.Write(make([]byte, compObjHeaderSize))
	writeString := func(s string) {
		binary.Write(&b, binary.LittleEndian, uint32(len(s)+1))
		b.WriteString(s)
		b.WriteByte(0)
	}
	writeString(userType)
	b.Write(clipboard)
	writeString(progID)
	return b.Bytes()
}

func le32(values ...uint32) []byte {
	var b bytes.Buffer
	for _, v := range values {
		binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

func TestParseCompObj(t *testing.T) {
	tests := []struct {
		name      string
		clipboard []byte
		want      string
	}{
		{"no clipboard format", le32(0), "MSPhotoEd.3"},
		{"standard clipboard format", le32(0xFFFFFFFF, 3), "MSPhotoEd.3"},
		{"mac clipboard format", le32(0xFFFFFFFE, 3), "MSPhotoEd.3"},
		{"registered clipboard name", append(le32(5), []byte("Bits\x00")...), "MSPhotoEd.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCompObj(compObj("Microsoft Photo Editor 3.0 Photo", tt.clipboard, "MSPhotoEd.3"))
			if err != nil {
				t.Fatalf("parseCompObj() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseCompObj() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCompObj_Truncated(t *testing.T) {
	full := compObj("Package", le32(0), "Package")
	for _, n := range []int{0, 10, compObjHeaderSize + 2, compObjHeaderSize + 14, len(full) - 3} {
		if _, err := parseCompObj(full[:n]); !errors.Is(err, errCompObjTruncated) {
			t.Errorf("parseCompObj(%d bytes) error = %v, want truncated", n, err)
		}
	}
}

func TestProgID_NotCompound(t *testing.T) {
	if _, err := ProgID([]byte("plain text")); err == nil {
		t.Error("ProgID() expected error for non compound data")
	}
}
