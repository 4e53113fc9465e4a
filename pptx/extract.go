package pptx

import (
	"strings"

	"github.com/beevik/etree"
)

// ExtractOptions holds options for text extraction.
type ExtractOptions struct {
	IncludeNotes   bool // Fill SlideText.Notes
	IncludeTables  bool // Append table rows to the content, tab separated
	ExcludeFooters bool // Skip footer, date and slide number placeholders
}

// DefaultExtractOptions returns the options used for indexing.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{IncludeTables: true, ExcludeFooters: true}
}

// SlideText is the text of one slide, as fed to the search index.
type SlideText struct {
	Index   int    // position in the slide-ID list, 0-indexed
	ID      string // p:sldId/@id
	Title   string
	Content string // non-title text blocks separated by newlines
	Notes   string
}

// SlideTexts extracts the text of every slide in presentation order.
func (p *Presentation) SlideTexts(opts ExtractOptions) ([]SlideText, error) {
	slides, err := p.Slides()
	if err != nil {
		return nil, err
	}
	out := make([]SlideText, 0, len(slides))
	for i, s := range slides {
		st := s.ExtractText(opts)
		st.Index = i
		st.ID = p.SlideID(s)
		out = append(out, st)
	}
	return out, nil
}

// ExtractText returns the title and remaining text of the slide. Text inside
// groups is included in paint order.
func (s *Slide) ExtractText(opts ExtractOptions) SlideText {
	st := SlideText{Index: -1, Title: s.Title()}
	titleTaken := st.Title == ""

	var blocks []string
	for _, sh := range s.AllShapes() {
		switch {
		case sh.HasTextFrame():
			if opts.ExcludeFooters && isFooterPlaceholder(sh.PlaceholderType()) {
				continue
			}
			text := strings.TrimSpace(sh.Text())
			if text == "" {
				continue
			}
			if !titleTaken && text == st.Title && isTitleCandidate(sh) {
				titleTaken = true
				continue
			}
			blocks = append(blocks, text)
		case sh.kind == KindGraphicFrame && opts.IncludeTables:
			if tbl := child(sh.graphicData(), nsDrawingML, "tbl"); tbl != nil {
				if text := tableText(tbl); text != "" {
					blocks = append(blocks, text)
				}
			}
		}
	}
	st.Content = strings.Join(blocks, "\n")

	if opts.IncludeNotes {
		st.Notes = s.Notes()
	}
	return st
}

func isTitleCandidate(sh *Shape) bool {
	switch sh.PlaceholderType() {
	case "title", "ctrTitle":
		return true
	}
	return sh.IsTitle()
}

// isFooterPlaceholder returns true if the placeholder type is a footer element.
func isFooterPlaceholder(phType string) bool {
	switch phType {
	case "ftr", "dt", "sldNum":
		return true
	}
	return false
}

// tableText renders a:tbl rows as lines of tab-separated cells. Cells covered
// by a merge are left empty.
func tableText(tbl *etree.Element) string {
	var lines []string
	for _, tr := range tbl.ChildElements() {
		if !is(tr, nsDrawingML, "tr") {
			continue
		}
		var cells []string
		for _, tc := range tr.ChildElements() {
			if !is(tc, nsDrawingML, "tc") {
				continue
			}
			if tc.SelectAttrValue("hMerge", "") == "1" || tc.SelectAttrValue("vMerge", "") == "1" {
				cells = append(cells, "")
				continue
			}
			var paras []string
			for _, p := range descendants(tc, nsDrawingML, "p") {
				if text := strings.TrimSpace(paragraphText(p)); text != "" {
					paras = append(paras, text)
				}
			}
			cells = append(cells, strings.Join(paras, " "))
		}
		if strings.TrimSpace(strings.Join(cells, "")) != "" {
			lines = append(lines, strings.Join(cells, "\t"))
		}
	}
	return strings.Join(lines, "\n")
}
