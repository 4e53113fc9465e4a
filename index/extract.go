package index

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/slidekit"
	"github.com/tsawler/slidekit/source"
	"golang.org/x/sync/errgroup"
)

// Extractor turns every presentation of a Source into slide records. Files
// are opened through the editor so diagrams and embedded objects are
// normalized before their text is read.
type Extractor struct {
	Source     source.Source
	Workers    int        // parallel files; GOMAXPROCS when zero
	Recognizer Recognizer // optional picture text; calls are serialized
	Options    []slidekit.Option
	Logger     logrus.FieldLogger
}

// Extraction is the outcome of an Extractor run. Records keep the order of
// the listed files.
type Extraction struct {
	Records []SlideRecord
	Files   int
	Failed  []*FileError
}

// Run extracts all files. A file that cannot be read or parsed is recorded
// in Failed and does not stop the run; only listing errors and context
// cancellation are returned.
func (x *Extractor) Run(ctx context.Context) (Extraction, error) {
	log := x.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	docs, err := x.Source.List(ctx)
	if err != nil {
		return Extraction{}, err
	}

	workers := x.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var rec Recognizer
	if x.Recognizer != nil {
		rec = &lockedRecognizer{r: x.Recognizer}
	}

	records := make([][]SlideRecord, len(docs))
	failures := make([]*FileError, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := x.extractFile(gctx, doc.Name, rec)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithError(err).WithField("file", doc.Name).Warn("skipping presentation")
				failures[i] = &FileError{File: doc.Name, Err: err}
				return nil
			}
			log.WithFields(logrus.Fields{"file": doc.Name, "slides": len(recs)}).Debug("extracted presentation")
			records[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Extraction{}, err
	}

	out := Extraction{Files: len(docs)}
	for i := range docs {
		out.Records = append(out.Records, records[i]...)
		if failures[i] != nil {
			out.Failed = append(out.Failed, failures[i])
		}
	}
	log.WithFields(logrus.Fields{
		"files":   out.Files,
		"failed":  len(out.Failed),
		"records": len(out.Records),
	}).Info("extraction finished")
	return out, nil
}

func (x *Extractor) extractFile(ctx context.Context, name string, rec Recognizer) ([]SlideRecord, error) {
	data, err := x.Source.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	ed, err := slidekit.OpenBytes(data, x.Options...)
	if err != nil {
		return nil, fmt.Errorf("opening presentation: %w", err)
	}
	return Records(ed.Presentation(), name, rec)
}

type lockedRecognizer struct {
	mu sync.Mutex
	r  Recognizer
}

func (l *lockedRecognizer) RecognizeImage(data []byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.RecognizeImage(data)
}
