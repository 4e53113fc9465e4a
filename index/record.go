// Package index feeds slide text into an Elasticsearch index and searches
// it. Records are extracted one per slide; a Client recreates the index,
// bulk-loads records and runs fuzzy content searches.
package index

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tsawler/slidekit/pptx"
)

// SlideRecord is the text of one slide.
type SlideRecord struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SlideID    string `json:"slide_id"`
	SlideIndex int    `json:"slide_index"` // 0-indexed
	SourceFile string `json:"ppt"`
}

// Document is a SlideRecord with the ownership fields stored next to it.
type Document struct {
	SlideRecord
	UserID           string `json:"user_id,omitempty"`
	Root             string `json:"root,omitempty"`
	VirtualFileName  string `json:"virtualFileName,omitempty"`
	OriginalFileName string `json:"originalFileName,omitempty"`
}

// Owner holds the ownership fields applied to every document of a run.
type Owner struct {
	UserID string
	Root   string
}

// ID returns a stable document id, so indexing the same slide twice
// overwrites the earlier copy.
func (d Document) ID() string {
	key := strings.Join([]string{d.UserID, d.Root, d.SourceFile, d.SlideID}, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Recognizer turns picture bytes into text. *ocr.Client satisfies it.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// Records returns one record per slide of pres, in presentation order.
// Picture text is appended to the content when rec is non-nil; pictures that
// fail to decode or recognize are skipped.
func Records(pres *pptx.Presentation, sourceFile string, rec Recognizer) ([]SlideRecord, error) {
	texts, err := pres.SlideTexts(pptx.DefaultExtractOptions())
	if err != nil {
		return nil, err
	}
	records := make([]SlideRecord, 0, len(texts))
	for _, st := range texts {
		r := SlideRecord{
			Title:      st.Title,
			Content:    st.Content,
			SlideID:    st.ID,
			SlideIndex: st.Index,
			SourceFile: sourceFile,
		}
		if rec != nil {
			s, err := pres.Slide(st.Index)
			if err != nil {
				return nil, err
			}
			if extra := pictureText(s, rec); extra != "" {
				r.Content = joinNonEmpty(r.Content, extra)
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func pictureText(s *pptx.Slide, rec Recognizer) string {
	var parts []string
	for _, pic := range s.Pictures() {
		data, err := s.PictureData(pic)
		if err != nil {
			continue
		}
		text, err := rec.RecognizeImage(data)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}

// Documents attaches owner fields to records. The virtual and original file
// names are both the record's source file.
func Documents(records []SlideRecord, owner Owner) []Document {
	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = Document{
			SlideRecord:      r,
			UserID:           owner.UserID,
			Root:             owner.Root,
			VirtualFileName:  r.SourceFile,
			OriginalFileName: r.SourceFile,
		}
	}
	return docs
}
