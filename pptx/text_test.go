package pptx

import (
	"strings"
	"testing"

	"github.com/tsawler/slidekit/internal/pptxtest"
)

func paragraphs(sh *Shape) int {
	n := 0
	for _, c := range sh.txBody().ChildElements() {
		if is(c, nsDrawingML, "p") {
			n++
		}
	}
	return n
}

func TestShape_Text(t *testing.T) {
	s := slideWithShapes(t, pptxtest.TextBox(2, "TextBox 1", "first\nsecond")+pptxtest.Shape(3, "Oval 2"))
	shapes := s.Shapes()

	if got := shapes[0].Text(); got != "first\nsecond" {
		t.Errorf("Text() = %q, want %q", got, "first\nsecond")
	}
	if shapes[1].HasTextFrame() {
		t.Error("HasTextFrame() = true for shape without txBody")
	}
	if got := shapes[1].Text(); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
}

func TestShape_SetText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		paras int
	}{
		{"single line", "hello", 1},
		{"three lines", "one\ntwo\nthree", 3},
		{"windows newlines", "one\r\ntwo", 2},
		{"empty", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := slideWithShapes(t, pptxtest.TextBox(2, "TextBox 1", "old\ntext\nhere\nand more"))
			sh := s.Shapes()[0]
			sh.SetText(tt.text)

			want := strings.ReplaceAll(tt.text, "\r\n", "\n")
			if got := sh.Text(); got != want {
				t.Errorf("Text() = %q, want %q", got, want)
			}
			if got := paragraphs(sh); got != tt.paras {
				t.Errorf("paragraphs = %d, want %d", got, tt.paras)
			}
		})
	}
}

func TestShape_SetText_CreatesBody(t *testing.T) {
	s := slideWithShapes(t, pptxtest.Shape(2, "Rectangle 1"))
	sh := s.Shapes()[0]
	sh.SetText("new text")
	if !sh.HasTextFrame() {
		t.Fatal("HasTextFrame() = false after SetText")
	}
	if got := sh.Text(); got != "new text" {
		t.Errorf("Text() = %q, want %q", got, "new text")
	}
}

func TestShape_ClearText_KeepsParagraphProperties(t *testing.T) {
	s := slideWithShapes(t, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="TextBox 1"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>`+
		`<p:txBody><a:bodyPr/><a:p><a:pPr algn="ctr"/><a:r><a:t>a</a:t></a:r><a:endParaRPr lang="en-US"/></a:p><a:p><a:r><a:t>b</a:t></a:r></a:p></p:txBody></p:sp>`)
	sh := s.Shapes()[0]

	sh.ClearText()
	if got := sh.Text(); got != "" {
		t.Errorf("Text() after ClearText = %q, want empty", got)
	}
	if got := paragraphs(sh); got != 1 {
		t.Errorf("paragraphs = %d, want 1", got)
	}

	sh.SetText("x\ny")
	for _, p := range sh.txBody().ChildElements() {
		if !is(p, nsDrawingML, "p") {
			continue
		}
		pPr := child(p, nsDrawingML, "pPr")
		if pPr == nil || pPr.SelectAttrValue("algn", "") != "ctr" {
			t.Error("paragraph lost its properties")
		}
	}
	// Runs go before endParaRPr.
	first := child(sh.txBody(), nsDrawingML, "p")
	kids := first.ChildElements()
	if last := kids[len(kids)-1]; last.Tag != "endParaRPr" {
		t.Errorf("last child of first paragraph = %s, want endParaRPr", last.Tag)
	}
}

func TestIsTitleName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Title 1", true},
		{"Subtitle 2", false},
		{"Content Placeholder 2", false},
		{"My Title Box", true},
		{"title", false},
	}
	for _, tt := range tests {
		if got := IsTitleName(tt.name); got != tt.want {
			t.Errorf("IsTitleName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSlide_TextTargets(t *testing.T) {
	s := slideWithShapes(t, pptxtest.TextBox(2, "Title 1", "T")+
		pptxtest.Placeholder(3, "Content Placeholder 2", "body", "")+
		pptxtest.Placeholder(4, "Footer Placeholder 3", "ftr", "ACME")+
		pptxtest.Shape(5, "Oval 4")+
		pptxtest.Group(6, "Group 5", pptxtest.TextBox(7, "TextBox 6", "nested")))

	titles, contents := s.TextTargets()
	if got := shapeNames(titles); !equalStrings(got, []string{"Title 1"}) {
		t.Errorf("titles = %v, want [Title 1]", got)
	}
	if got := shapeNames(contents); !equalStrings(got, []string{"Content Placeholder 2"}) {
		t.Errorf("contents = %v, want [Content Placeholder 2]", got)
	}
}
