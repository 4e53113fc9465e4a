package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tsawler/slidekit/index"
	"github.com/tsawler/slidekit/ocr"
	"github.com/tsawler/slidekit/source"
)

func (a *app) indexCommand() *cobra.Command {
	var (
		owner       index.Owner
		workers     int
		pattern     string
		recursive   bool
		fromBucket  bool
		keepIndex   bool
		useOCR      bool
		ocrLang     string
		ocrMode     string
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "index [directory]",
		Short: "Extract slide text and load it into the search index",
		Long: `Reads every presentation in a directory (or, with --bucket, the configured
MinIO bucket), recreates the index and loads one document per slide.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := a.openSource(ctx, args, fromBucket, pattern, recursive)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			client, err := a.searchClient(index.WithMetrics(index.MustNewMetrics(reg)))
			if err != nil {
				return err
			}
			if err := client.Ping(ctx); err != nil {
				return err
			}
			if !keepIndex {
				if err := client.RecreateIndex(ctx); err != nil {
					return err
				}
			}

			x := &index.Extractor{Source: src, Workers: workers, Options: a.editorOptions(), Logger: a.log}
			if useOCR {
				mode, err := ocr.ParseMode(ocrMode)
				if err != nil {
					return err
				}
				rec, err := ocr.New(ocr.WithLanguages(ocrLang), ocr.WithMode(mode))
				if err != nil {
					return err
				}
				defer rec.Close()
				x.Recognizer = rec
			}
			extraction, err := x.Run(ctx)
			if err != nil {
				return err
			}

			res, err := client.IndexBatch(ctx, index.Documents(extraction.Records, owner))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "files: %d, failed files: %d, indexed: %d, failed documents: %d\n",
				extraction.Files, len(extraction.Failed), res.Succeeded, len(res.Errors))
			for _, fe := range extraction.Failed {
				fmt.Fprintln(w, fe.Error())
			}
			for _, ie := range res.Errors {
				fmt.Fprintln(w, ie.Error())
			}
			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&owner.UserID, "user", "", "user_id stored with every document")
	f.StringVar(&owner.Root, "root", "", "root stored with every document")
	f.IntVarP(&workers, "workers", "w", 0, "presentations processed in parallel (default: number of CPUs)")
	f.StringVar(&pattern, "pattern", source.DefaultPattern, "file name pattern")
	f.BoolVarP(&recursive, "recursive", "r", false, "search subdirectories")
	f.BoolVar(&fromBucket, "bucket", false, "read presentations from the configured MinIO bucket")
	f.BoolVar(&keepIndex, "keep-index", false, "add to the existing index instead of recreating it")
	f.BoolVar(&useOCR, "ocr", false, "index text recognized in pictures (needs a build with -tags ocr)")
	f.StringVar(&ocrLang, "ocr-lang", "eng", "Tesseract languages, e.g. eng+fra")
	f.StringVar(&ocrMode, "ocr-mode", ocr.ModeAuto.String(), "picture layout: auto, block or sparse")
	f.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	return cmd
}

func (a *app) openSource(ctx context.Context, args []string, fromBucket bool, pattern string, recursive bool) (source.Source, error) {
	if fromBucket {
		if len(args) > 0 {
			return nil, errors.New("a directory cannot be combined with --bucket")
		}
		m := a.cfg.Minio
		b, err := source.NewBucket(source.BucketConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Secure:    m.Secure,
			Region:    m.Region,
			Bucket:    m.Bucket,
			Prefix:    m.Prefix,
		}, pattern)
		if err != nil {
			return nil, err
		}
		if err := b.HealthCheck(ctx); err != nil {
			return nil, err
		}
		return b, nil
	}
	if len(args) == 0 {
		return nil, errors.New("a directory is required unless --bucket is set")
	}
	return source.NewDir(args[0], pattern, recursive)
}

func (a *app) searchCommand() *cobra.Command {
	var (
		q      index.Query
		titles bool
	)
	cmd := &cobra.Command{
		Use:   "search <text...>",
		Short: "Search slide content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.searchClient()
			if err != nil {
				return err
			}
			q.Text = strings.Join(args, " ")
			res, err := client.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			return index.RenderHits(cmd.OutOrStdout(), res, !titles)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.UserID, "user", "", "only return documents of this user_id")
	f.IntVar(&q.From, "from", 0, "offset of the first hit")
	f.IntVarP(&q.Size, "size", "n", index.DefaultPageSize, "number of hits")
	f.BoolVar(&titles, "titles", false, "show titles instead of highlighted matches")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var (
		from, size int
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed slides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.searchClient()
			if err != nil {
				return err
			}
			var res index.SearchResult
			if all {
				res, err = client.ScanAll(cmd.Context(), size)
			} else {
				res, err = client.Scan(cmd.Context(), from, size)
			}
			if err != nil {
				return err
			}
			return index.RenderHits(cmd.OutOrStdout(), res, false)
		},
	}
	f := cmd.Flags()
	f.IntVar(&from, "from", 0, "offset of the first document")
	f.IntVarP(&size, "size", "n", index.DefaultPageSize, "documents per page")
	f.BoolVar(&all, "all", false, "page through the whole index")
	return cmd
}
