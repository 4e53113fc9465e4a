package index

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const firstLineRunes = 50

// RenderHits prints a result table: presentation, 1-based slide number and
// either the first highlighted line (showHighlights) or the slide title,
// falling back to the first content line.
func RenderHits(w io.Writer, res SearchResult, showHighlights bool) error {
	column := "TITLE/FIRST LINE"
	if showHighlights {
		column = "SEARCH RESULTS"
	}
	if _, err := fmt.Fprintf(w, "TOTAL: %d\n%-35s %-10s %s\n%s\n", res.Total, "PRESENTATION", "SLIDE NO", column, strings.Repeat("-", 80)); err != nil {
		return err
	}
	for _, h := range res.Hits {
		line := ""
		if showHighlights {
			line = highlightedLine(h.Highlights)
		}
		if line == "" {
			line = summaryLine(h.Document)
		}
		slide := strconv.Itoa(h.Document.SlideIndex + 1)
		if _, err := fmt.Fprintf(w, "%-35s %-10s %s\n", h.Document.SourceFile, slide, line); err != nil {
			return err
		}
	}
	return nil
}

// highlightedLine returns the first fragment line holding a match, with the
// highlight markup removed.
func highlightedLine(fragments []string) string {
	for _, frag := range fragments {
		for _, line := range strings.Split(frag, "\n") {
			if strings.Contains(line, "<em>") {
				return stripTags(line)
			}
		}
	}
	return ""
}

func summaryLine(d Document) string {
	if d.Title != "" {
		return d.Title
	}
	first, _, _ := strings.Cut(d.Content, "\n")
	if r := []rune(first); len(r) > firstLineRunes {
		return string(r[:firstLineRunes])
	}
	return first
}

func stripTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
