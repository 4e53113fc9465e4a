package pptx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/slidekit/internal/pptxtest"
)

// writeZipFile writes a file into a zip archive.
func writeZipFile(t testing.TB, zw *zip.Writer, name, content string) {
	t.Helper()
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Failed to create %s in zip: %v", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// createMinimalPPTX writes a hand-built PPTX with one slide, no layouts and
// no slide relationships.
func createMinimalPPTX(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "minimal.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	writeZipFile(t, zw, "[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
  <Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
</Types>`)

	writeZipFile(t, zw, "_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`)

	writeZipFile(t, zw, "ppt/_rels/presentation.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
</Relationships>`)

	writeZipFile(t, zw, "ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>
    <p:sldId id="256" r:id="rId1"/>
  </p:sldIdLst>
  <p:sldSz cx="9144000" cy="6858000"/>
</p:presentation>`)

	writeZipFile(t, zw, "ppt/slides/slide1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
      </p:nvGrpSpPr>
      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="2" name="Title 1"/>
          <p:nvPr>
            <p:ph type="title"/>
          </p:nvPr>
        </p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          <a:bodyPr/>
          <a:p><a:r><a:t>Test Title</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="3" name="Content 1"/>
          <p:nvPr>
            <p:ph type="body" idx="1"/>
          </p:nvPr>
        </p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          <a:bodyPr/>
          <a:p><a:pPr lvl="0"/><a:r><a:t>First bullet point</a:t></a:r></a:p>
          <a:p><a:pPr lvl="1"/><a:r><a:t>Nested point</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`)

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return path
}

func TestOpen_MinimalFile(t *testing.T) {
	p, err := Open(createMinimalPPTX(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if p.SlideCount() != 1 {
		t.Fatalf("SlideCount() = %d, want 1", p.SlideCount())
	}

	s := mustSlide(t, p, 0)
	if s.Layout() != nil {
		t.Error("Layout() != nil for slide without relationships")
	}
	st := s.ExtractText(DefaultExtractOptions())
	if st.Title != "Test Title" {
		t.Errorf("Title = %q, want %q", st.Title, "Test Title")
	}
	if st.Content != "First bullet point\nNested point" {
		t.Errorf("Content = %q", st.Content)
	}
}

func TestOpen_NotFound(t *testing.T) {
	if _, err := Open("/nonexistent/file.pptx"); err == nil {
		t.Error("Open() expected error for nonexistent file")
	}
}

func TestOpen_MissingPresentation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	zw := zip.NewWriter(f)
	writeZipFile(t, zw, "[Content_Types].xml", "<Types/>")
	writeZipFile(t, zw, "ppt/presentation.xml", "<presentation/>")
	zw.Close()
	f.Close()

	if _, err := Open(path); err == nil {
		t.Error("Open() expected error without an officeDocument relationship")
	}
}

func extractDeck() pptxtest.Deck {
	return pptxtest.Deck{
		Slides: []pptxtest.Slide{
			{
				Shapes: pptxtest.Placeholder(2, "Title 1", "title", "Results") +
					pptxtest.TextBox(3, "TextBox 2", "Revenue grew\nCosts fell") +
					pptxtest.Group(4, "Group 3", pptxtest.TextBox(5, "TextBox 4", "inside")) +
					pptxtest.Table(6, "Table 5", [][]string{{"a", "b"}, {"c", "d"}}) +
					pptxtest.Placeholder(7, "Footer Placeholder 6", "ftr", "Confidential"),
				Notes: "Say hello",
			},
			{
				Shapes: pptxtest.TextBox(2, "Title 1", "Named title") +
					pptxtest.TextBox(3, "TextBox 2", "Named title"),
			},
			{Shapes: pptxtest.TextBox(2, "TextBox 1", "  ")},
		},
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		opts  ExtractOptions
		slide int
		want  SlideText
	}{
		{
			name: "defaults",
			opts: DefaultExtractOptions(),
			want: SlideText{Index: -1, Title: "Results", Content: "Revenue grew\nCosts fell\ninside\na\tb\nc\td"},
		},
		{
			name: "footers and notes, no tables",
			opts: ExtractOptions{IncludeNotes: true},
			want: SlideText{Index: -1, Title: "Results", Content: "Revenue grew\nCosts fell\ninside\nConfidential", Notes: "Say hello"},
		},
		{
			name:  "title by name removed once",
			opts:  DefaultExtractOptions(),
			slide: 1,
			want:  SlideText{Index: -1, Title: "Named title", Content: "Named title"},
		},
		{
			name:  "blank slide",
			opts:  DefaultExtractOptions(),
			slide: 2,
			want:  SlideText{Index: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openDeck(t, extractDeck())
			got := mustSlide(t, p, tt.slide).ExtractText(tt.opts)
			if got != tt.want {
				t.Errorf("ExtractText() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSlideTexts(t *testing.T) {
	p := openDeck(t, extractDeck())
	if err := p.MoveSlide(0, 2); err != nil {
		t.Fatalf("MoveSlide() error = %v", err)
	}

	texts, err := p.SlideTexts(DefaultExtractOptions())
	if err != nil {
		t.Fatalf("SlideTexts() error = %v", err)
	}
	if len(texts) != 3 {
		t.Fatalf("len(SlideTexts()) = %d, want 3", len(texts))
	}
	last := texts[2]
	if last.Index != 2 || last.ID != "256" || last.Title != "Results" {
		t.Errorf("last = %+v, want index 2, id 256, title Results", last)
	}
	if texts[0].ID != "257" {
		t.Errorf("first ID = %q, want 257", texts[0].ID)
	}
}

func TestTableText_MergedCells(t *testing.T) {
	s := slideWithShapes(t, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="2" name="Table 1"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`+
		`<p:xfrm><a:off x="0" y="0"/><a:ext cx="1" cy="1"/></p:xfrm><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>`+
		`<a:tr><a:tc gridSpan="2"><a:txBody><a:p><a:r><a:t>wide</a:t></a:r></a:p></a:txBody></a:tc><a:tc hMerge="1"><a:txBody><a:p><a:r><a:t>hidden</a:t></a:r></a:p></a:txBody></a:tc></a:tr>`+
		`<a:tr><a:tc><a:txBody><a:p/></a:txBody></a:tc><a:tc><a:txBody><a:p/></a:txBody></a:tc></a:tr>`+
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)

	got := s.ExtractText(DefaultExtractOptions()).Content
	if got != "wide\t" {
		t.Errorf("Content = %q, want %q", got, "wide\t")
	}
}

func BenchmarkSlideTexts(b *testing.B) {
	d := pptxtest.Deck{}
	for i := 0; i < 20; i++ {
		d.Slides = append(d.Slides, pptxtest.Slide{
			Shapes: pptxtest.Placeholder(2, "Title 1", "title", "Slide title") +
				pptxtest.TextBox(3, "TextBox 2", "Content paragraph one\nContent paragraph two\nContent paragraph three"),
		})
	}
	p, err := OpenBytes(d.Bytes(b))
	if err != nil {
		b.Fatalf("OpenBytes failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.SlideTexts(DefaultExtractOptions()); err != nil {
			b.Fatalf("SlideTexts failed: %v", err)
		}
	}
}
